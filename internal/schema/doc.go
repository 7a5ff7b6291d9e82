// Package schema turns one concrete pyramid tile URL into an immutable
// template with slots for face, zoom, row and column.
//
// The URL path is rewritten from the end:
//
//	http://host/tour/pano0/001/0_0.jpg?v=2
//	http://host/tour/pano{face}/{zoom}/{row}_{col}.jpg?v=2
//
// The last segment must contain an underscore (a tile, not a whole-face
// image); it becomes {row}_{col} followed by the seed's extension. The
// second-to-last segment becomes {zoom}. The third-to-last segment loses its
// trailing digits and gets {face} appended. Scheme, host, the rest of the
// path, query and fragment are kept verbatim.
package schema
