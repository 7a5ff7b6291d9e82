package stitch

import "errors"

var (
	// ErrNotStitched is returned when a projector receives faces that are still tiled.
	ErrNotStitched = errors.New("cube faces are not single images")

	// ErrEmptyFace is returned when a face has no tile to draw.
	ErrEmptyFace = errors.New("cube face is empty")

	// ErrNoCommand is returned when a Command projector has no program configured.
	ErrNoCommand = errors.New("no stitch command configured")

	// ErrNoOutput is returned when the external command did not write its output file.
	ErrNoOutput = errors.New("stitch command produced no output")
)
