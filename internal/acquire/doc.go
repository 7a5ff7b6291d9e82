// Package acquire coordinates one conversion from a seed URL to a stitched
// panorama.
//
// The Coordinator classifies the URL and picks a strategy: pyramid URLs are
// normalized into a schema, their maximum zoom is probed and every face grid
// is downloaded; six-face URLs have their five siblings derived and fetched.
// The resulting cube is persisted, composed into whole faces when it is
// tiled, and handed with the conversion's rotation to a projector.
//
// Everything the Coordinator talks to is injected: the fetcher, the
// projector, the multistitcher and the store. Each call owns its own probe
// counter and schema, so one Coordinator can serve concurrent conversions.
package acquire
