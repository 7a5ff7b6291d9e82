// Package tileinfo inspects fetched tile bytes: media type, pixel
// dimensions and a few EXIF tags that panorama cameras and stitching tools
// leave behind.
package tileinfo
