package schema

import "errors"

var (
	// ErrUnreachableSource is returned when the seed URL itself cannot be fetched.
	ErrUnreachableSource = errors.New("source url is not reachable")

	// ErrNotTileURL is returned when the URL path does not have the shape of a pyramid tile.
	ErrNotTileURL = errors.New("url is not a pyramid tile url")
)
