package schema

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/nao1215/cubegrab/internal/fetch"
)

// minSegments is the number of path segments the rewrite touches.
const minSegments = 3

// Schema is a parameterized tile URL. It is immutable once parsed and safe
// for concurrent use.
type Schema struct {
	source string
	// prefix ends with the stem of the face segment.
	prefix string
	// suffix starts with the tile extension and carries query and fragment.
	suffix string
}

// Parse derives a Schema from a tile URL without any network access.
func Parse(raw string) (*Schema, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotTileURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute url", ErrNotTileURL, raw)
	}

	segments := strings.Split(strings.TrimPrefix(u.EscapedPath(), "/"), "/")
	if len(segments) < minSegments {
		return nil, fmt.Errorf("%w: %q has fewer than %d path segments", ErrNotTileURL, raw, minSegments)
	}

	n := len(segments)
	last := segments[n-1]
	ext := path.Ext(last)
	if !strings.Contains(strings.TrimSuffix(last, ext), "_") {
		return nil, fmt.Errorf("%w: last segment %q has no row_col separator", ErrNotTileURL, last)
	}

	faceStem := strings.TrimRight(segments[n-3], "0123456789")
	head := append(segments[:n-3:n-3], faceStem)

	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	if u.User != nil {
		b.WriteString(u.User.String())
		b.WriteByte('@')
	}
	b.WriteString(u.Host)
	b.WriteByte('/')
	b.WriteString(strings.Join(head, "/"))

	suffix := ext
	if u.RawQuery != "" || u.ForceQuery {
		suffix += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		suffix += "#" + u.EscapedFragment()
	}

	return &Schema{source: raw, prefix: b.String(), suffix: suffix}, nil
}

// Normalize verifies that raw is fetchable and then parses it.
// The seed response is returned so callers can inspect the seed tile.
// A seed that cannot be fetched yields ErrUnreachableSource and nothing else
// is requested.
func Normalize(ctx context.Context, f fetch.Fetcher, raw string) (*Schema, *fetch.Response, error) {
	resp, err := f.Fetch(ctx, raw)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrUnreachableSource, err)
	}
	if !resp.Found() {
		return nil, nil, fmt.Errorf("%w: %s answered status %d", ErrUnreachableSource, raw, resp.StatusCode)
	}

	s, err := Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	return s, resp, nil
}

// Render substitutes the four slots. Integers are rendered without padding.
func (s *Schema) Render(face, zoom, row, col int) string {
	var b strings.Builder
	b.Grow(len(s.prefix) + len(s.suffix) + 16)
	b.WriteString(s.prefix)
	b.WriteString(strconv.Itoa(face))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(zoom))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(row))
	b.WriteByte('_')
	b.WriteString(strconv.Itoa(col))
	b.WriteString(s.suffix)
	return b.String()
}

// Template returns the schema with named placeholders, for display.
func (s *Schema) Template() string {
	return s.prefix + "{face}/{zoom}/{row}_{col}" + s.suffix
}

// Source returns the URL the schema was derived from.
func (s *Schema) Source() string {
	return s.source
}

// String implements fmt.Stringer.
func (s *Schema) String() string {
	return s.Template()
}
