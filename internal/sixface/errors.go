package sixface

import "errors"

var (
	// ErrFaceMissing is returned when one of the six face images does not exist.
	ErrFaceMissing = errors.New("face image missing")

	// ErrNotFaceURL is returned when the seed has no face symbol before its extension.
	ErrNotFaceURL = errors.New("url has no face symbol before its extension")
)
