package acquire

import (
	"errors"

	"github.com/nao1215/cubegrab/internal/classify"
)

var (
	// ErrInvalidURL is returned when no acquisition strategy applies to a URL.
	ErrInvalidURL = classify.ErrInvalidURL

	// ErrStitchFailure wraps any error from the multistitcher or projector.
	ErrStitchFailure = errors.New("stitch failed")
)
