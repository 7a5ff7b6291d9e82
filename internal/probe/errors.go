package probe

import "errors"

var (
	// ErrNoTilesFound is returned when a face has no tile at its base position.
	ErrNoTilesFound = errors.New("no tiles found")

	// ErrGridTooLarge is returned when a row or column index reaches the extent cap.
	ErrGridTooLarge = errors.New("tile grid exceeds extent cap")
)
