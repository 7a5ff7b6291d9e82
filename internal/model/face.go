package model

import (
	"fmt"
	"strings"
)

// Face identifies one of the six planes of a cubemap.
// The numeric order is the order the stitchers expect their input in.
type Face int

const (
	// FaceBack is the face behind the viewer.
	FaceBack Face = iota
	// FaceRight is the face to the right of the viewer.
	FaceRight
	// FaceFront is the face in front of the viewer.
	FaceFront
	// FaceLeft is the face to the left of the viewer.
	FaceLeft
	// FaceTop is the face above the viewer.
	FaceTop
	// FaceBottom is the face below the viewer.
	FaceBottom
)

// FaceCount is the number of faces of a cube.
const FaceCount = 6

// AllFaces returns every face in stitcher order.
func AllFaces() []Face {
	return []Face{FaceBack, FaceRight, FaceFront, FaceLeft, FaceTop, FaceBottom}
}

// String returns the lower case name of the face.
func (f Face) String() string {
	switch f {
	case FaceBack:
		return "back"
	case FaceRight:
		return "right"
	case FaceFront:
		return "front"
	case FaceLeft:
		return "left"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	default:
		return fmt.Sprintf("face(%d)", int(f))
	}
}

// Valid reports whether f is one of the six cube faces.
func (f Face) Valid() bool {
	return f >= FaceBack && f <= FaceBottom
}

// Letter returns the single letter krpano-style viewers use for the face.
func (f Face) Letter() byte {
	switch f {
	case FaceBack:
		return 'b'
	case FaceRight:
		return 'r'
	case FaceFront:
		return 'f'
	case FaceLeft:
		return 'l'
	case FaceTop:
		return 'u'
	case FaceBottom:
		return 'd'
	default:
		return '?'
	}
}

// FaceFromLetter maps a face letter (one of "frblud") to its face.
func FaceFromLetter(letter byte) (Face, bool) {
	switch letter {
	case 'b':
		return FaceBack, true
	case 'r':
		return FaceRight, true
	case 'f':
		return FaceFront, true
	case 'l':
		return FaceLeft, true
	case 'u':
		return FaceTop, true
	case 'd':
		return FaceBottom, true
	default:
		return 0, false
	}
}

// FaceNaming describes how a six-face provider names its face images.
type FaceNaming int

const (
	// FaceNamingLetters names faces with one of the letters "frblud".
	FaceNamingLetters FaceNaming = iota
	// FaceNamingDigits names faces with one of the digits "012345".
	FaceNamingDigits
)

// LetterSymbols is the default enumeration of letter-named faces.
const LetterSymbols = "frblud"

// DigitSymbols is the enumeration of digit-named faces.
const DigitSymbols = "012345"

// Symbols returns the six face symbols in download order.
func (n FaceNaming) Symbols() string {
	if n == FaceNamingDigits {
		return DigitSymbols
	}
	return LetterSymbols
}

// String returns the naming scheme name.
func (n FaceNaming) String() string {
	if n == FaceNamingDigits {
		return "digits"
	}
	return "letters"
}

// FaceForSymbol maps a face symbol to its face.
// Letters map by meaning, digits map positionally like pyramid face indices.
func FaceForSymbol(symbol byte) (Face, bool) {
	if symbol >= '0' && symbol <= '5' {
		return Face(symbol - '0'), true
	}
	return FaceFromLetter(symbol)
}

// ParseFace parses a face name ("front") or letter ("f").
func ParseFace(s string) (Face, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 {
		if f, ok := FaceFromLetter(s[0]); ok {
			return f, nil
		}
	}
	for _, f := range AllFaces() {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown face %q", s)
}
