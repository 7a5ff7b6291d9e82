package model

// Confidence expresses how likely a URL is to be handled by this engine.
// Higher values mean the engine should be preferred over competing handlers.
type Confidence int

const (
	// ConfidenceUnsupported means the URL does not look like a supported panorama.
	ConfidenceUnsupported Confidence = iota

	// ConfidencePossible means the URL may be supported, but its shape is ambiguous.
	ConfidencePossible

	// ConfidenceProbable means the URL matches a specific supported shape.
	ConfidenceProbable
)

// String returns a human-readable representation of the confidence level.
func (c Confidence) String() string {
	switch c {
	case ConfidenceUnsupported:
		return "UNSUPPORTED"
	case ConfidencePossible:
		return "POSSIBLE"
	case ConfidenceProbable:
		return "PROBABLE"
	default:
		return "UNKNOWN"
	}
}

// Supported reports whether the level is above ConfidenceUnsupported.
func (c Confidence) Supported() bool {
	return c > ConfidenceUnsupported
}
