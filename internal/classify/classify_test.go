package classify

import (
	"errors"
	"testing"

	"github.com/nao1215/cubegrab/internal/model"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		url        string
		strategy   Strategy
		confidence model.Confidence
		naming     model.FaceNaming
	}{
		{
			name:       "pyramid tile",
			url:        "http://example.com/pano0/001/0_0.jpg",
			strategy:   StrategyPyramid,
			confidence: model.ConfidenceProbable,
		},
		{
			name:       "pyramid tile with query",
			url:        "https://cdn.example.com/tours/p5/12/3_4.jpg?v=2",
			strategy:   StrategyPyramid,
			confidence: model.ConfidenceProbable,
		},
		{
			name:       "six-face letter",
			url:        "http://example.com/pano_f.jpg",
			strategy:   StrategySixFace,
			confidence: model.ConfidenceProbable,
			naming:     model.FaceNamingLetters,
		},
		{
			name:       "six-face bottom letter",
			url:        "http://example.com/scenes/hall_d.jpg",
			strategy:   StrategySixFace,
			confidence: model.ConfidenceProbable,
			naming:     model.FaceNamingLetters,
		},
		{
			name:       "six-face digit",
			url:        "http://example.com/pano/3.jpg",
			strategy:   StrategySixFace,
			confidence: model.ConfidencePossible,
			naming:     model.FaceNamingDigits,
		},
		{
			name:       "bare digit file name",
			url:        "0.jpg",
			strategy:   StrategySixFace,
			confidence: model.ConfidencePossible,
			naming:     model.FaceNamingDigits,
		},
		{
			name:       "two digit file name is not a face",
			url:        "http://example.com/pano/12.jpg",
			strategy:   StrategyNone,
			confidence: model.ConfidenceUnsupported,
		},
		{
			name:       "letter outside frblud",
			url:        "http://example.com/pano_x.jpg",
			strategy:   StrategyNone,
			confidence: model.ConfidenceUnsupported,
		},
		{
			name:       "unrelated page",
			url:        "https://example.com/index.html",
			strategy:   StrategyNone,
			confidence: model.ConfidenceUnsupported,
		},
		{
			name:       "empty",
			url:        "",
			strategy:   StrategyNone,
			confidence: model.ConfidenceUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := Classify(tt.url)
			if m.Strategy != tt.strategy {
				t.Errorf("Strategy = %v, want %v", m.Strategy, tt.strategy)
			}
			if m.Confidence != tt.confidence {
				t.Errorf("Confidence = %v, want %v", m.Confidence, tt.confidence)
			}
			if m.Supported() && m.Naming != tt.naming {
				t.Errorf("Naming = %v, want %v", m.Naming, tt.naming)
			}
			if got := Confidence(tt.url); got != tt.confidence {
				t.Errorf("Confidence() = %v, want %v", got, tt.confidence)
			}
		})
	}
}

func TestClassify_PyramidWinsOverSixFace(t *testing.T) {
	t.Parallel()

	// Matches both rule families.
	url := "http://example.com/pano/2/0_1.jpg?alt=/cube_f.jpg"
	m := Classify(url)
	if m.Strategy != StrategyPyramid {
		t.Fatalf("Strategy = %v, want pyramid", m.Strategy)
	}
	if m.Rule != "pyramid" {
		t.Errorf("Rule = %q", m.Rule)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	url := "http://example.com/pano_u.jpg"
	first := Classify(url)
	for range 10 {
		if got := Classify(url); got != first {
			t.Fatalf("Classify changed result: %+v vs %+v", got, first)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	if _, err := Resolve("https://example.com/"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}
	m, err := Resolve("http://example.com/pano_f.jpg")
	if err != nil || m.Strategy != StrategySixFace {
		t.Errorf("Resolve() = %+v, %v", m, err)
	}
}
