package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidRotation is returned when the rotation property is not a list of three numbers.
var ErrInvalidRotation = errors.New("rotation must be a list of three numbers")

// RotationProperty is the conversion property key holding the rotation tuple.
const RotationProperty = "rotation"

// Rotation is a (yaw, pitch, roll) triple in degrees handed unmodified to the projector.
type Rotation [3]float64

// Yaw returns the first angle.
func (r Rotation) Yaw() float64 { return r[0] }

// Pitch returns the second angle.
func (r Rotation) Pitch() float64 { return r[1] }

// Roll returns the third angle.
func (r Rotation) Roll() float64 { return r[2] }

// IsZero reports whether all angles are zero.
func (r Rotation) IsZero() bool {
	return r == Rotation{}
}

// String renders the rotation as "yaw,pitch,roll".
func (r Rotation) String() string {
	return fmt.Sprintf("%g,%g,%g", r[0], r[1], r[2])
}

// Conversion is one request to turn a panorama URL into an equirectangular image.
type Conversion struct {
	// ID identifies the conversion; stored files are keyed by it.
	ID string `json:"id"`

	// URL is the seed tile or face URL supplied by the caller.
	URL string `json:"url"`

	// Properties carries optional caller metadata such as "rotation".
	Properties map[string]any `json:"properties,omitempty"`

	// CreatedAt is when the conversion was requested.
	CreatedAt time.Time `json:"created_at"`
}

// NewConversion creates a conversion with a fresh random ID.
func NewConversion(url string) *Conversion {
	return &Conversion{
		ID:         uuid.NewString(),
		URL:        url,
		Properties: make(map[string]any),
		CreatedAt:  time.Now().UTC(),
	}
}

// SetRotation stores r in the rotation property.
func (c *Conversion) SetRotation(r Rotation) {
	if c.Properties == nil {
		c.Properties = make(map[string]any)
	}
	c.Properties[RotationProperty] = []any{r[0], r[1], r[2]}
}

// Rotation returns the rotation property, or the zero rotation when it is absent.
func (c *Conversion) Rotation() (Rotation, error) {
	var rot Rotation
	raw, ok := c.Properties[RotationProperty]
	if !ok || raw == nil {
		return rot, nil
	}

	var values []any
	switch v := raw.(type) {
	case Rotation:
		return v, nil
	case [3]float64:
		return Rotation(v), nil
	case []float64:
		for _, f := range v {
			values = append(values, f)
		}
	case []any:
		values = v
	default:
		return rot, fmt.Errorf("%w: got %T", ErrInvalidRotation, raw)
	}

	if len(values) != len(rot) {
		return rot, fmt.Errorf("%w: got %d values", ErrInvalidRotation, len(values))
	}
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return rot, fmt.Errorf("%w: element %d is %T", ErrInvalidRotation, i, v)
		}
		rot[i] = f
	}
	return rot, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
