// Package main provides the entry point for the cubegrab CLI.
//
// cubegrab downloads the tiles of a cubemap panorama from a viewer's tile
// URL, reassembles the six faces and projects them into an equirectangular
// image.
//
// Usage:
//
//	cubegrab grab <tile-url>...
//	cubegrab classify <url>...
//	cubegrab history [url]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
