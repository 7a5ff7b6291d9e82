package fetch

import "net/http"

// Outcome is the tagged result of one fetch.
type Outcome int

const (
	// OutcomeFound means the tile exists and its bytes were read.
	OutcomeFound Outcome = iota

	// OutcomeAbsent means the provider answered authoritatively that the tile does not exist.
	OutcomeAbsent

	// OutcomeTransient means no definite answer was obtained.
	OutcomeTransient
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeAbsent:
		return "absent"
	case OutcomeTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Classify maps an HTTP status code to an outcome.
func Classify(status int) Outcome {
	switch {
	case status >= 200 && status < 300:
		return OutcomeFound
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return OutcomeTransient
	case status >= 500:
		return OutcomeTransient
	case status >= 400:
		return OutcomeAbsent
	default:
		// 1xx and unfollowed 3xx carry no tile.
		return OutcomeAbsent
	}
}
