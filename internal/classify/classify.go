package classify

import (
	"fmt"
	"regexp"

	"github.com/nao1215/cubegrab/internal/model"
)

// Strategy is the acquisition path selected for a URL.
type Strategy int

const (
	// StrategyNone means no rule matched.
	StrategyNone Strategy = iota
	// StrategyPyramid normalizes the URL, probes the zoom level and downloads tile grids.
	StrategyPyramid
	// StrategySixFace downloads six whole-face images.
	StrategySixFace
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyPyramid:
		return "pyramid"
	case StrategySixFace:
		return "six-face"
	default:
		return "none"
	}
}

// Match is the result of classifying a URL.
type Match struct {
	Strategy   Strategy
	Confidence model.Confidence
	// Naming tells the six-face downloader how faces are enumerated.
	Naming model.FaceNaming
	// Rule is the name of the rule that matched, empty when none did.
	Rule string
}

// Supported reports whether a rule matched.
func (m Match) Supported() bool {
	return m.Strategy != StrategyNone
}

type rule struct {
	name       string
	pattern    *regexp.Regexp
	strategy   Strategy
	confidence model.Confidence
	naming     model.FaceNaming
}

// Rules are evaluated in slice order; the first match wins.
var rules = []rule{
	{
		name:       "pyramid",
		pattern:    regexp.MustCompile(`\d+/\d+/\d+_\d+\.jpg`),
		strategy:   StrategyPyramid,
		confidence: model.ConfidenceProbable,
	},
	{
		name:       "six-face-letters",
		pattern:    regexp.MustCompile(`_[frblud]\.jpg`),
		strategy:   StrategySixFace,
		confidence: model.ConfidenceProbable,
		naming:     model.FaceNamingLetters,
	},
	{
		name:       "six-face-digits",
		pattern:    regexp.MustCompile(`(?:^|/)\d\.jpg(?:$|[?#])`),
		strategy:   StrategySixFace,
		confidence: model.ConfidencePossible,
		naming:     model.FaceNamingDigits,
	},
}

// Classify returns the rule match for url. An unmatched URL yields a Match
// with StrategyNone and ConfidenceUnsupported.
func Classify(url string) Match {
	for _, r := range rules {
		if r.pattern.MatchString(url) {
			return Match{
				Strategy:   r.strategy,
				Confidence: r.confidence,
				Naming:     r.naming,
				Rule:       r.name,
			}
		}
	}
	return Match{Strategy: StrategyNone, Confidence: model.ConfidenceUnsupported}
}

// Confidence returns how likely url is to be handled by this engine.
func Confidence(url string) model.Confidence {
	return Classify(url).Confidence
}

// Resolve is Classify for callers that need a strategy; it fails with
// ErrInvalidURL when no rule matched.
func Resolve(url string) (Match, error) {
	m := Classify(url)
	if !m.Supported() {
		return m, fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	return m, nil
}
