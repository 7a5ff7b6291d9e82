// Package classify decides whether a URL looks like a supported cubemap
// panorama, and if so, which acquisition strategy applies.
//
// Two rule families are checked in a fixed order. Full-pyramid rules come
// first because their shape ({zoom}/{face}_{row}_{col}.jpg style numeric
// segments) is more specific than the six-face rules and must not be shadowed
// by them. Classification is a pure function of the URL string; it never
// touches the network.
package classify
