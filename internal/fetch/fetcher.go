package fetch

import (
	"context"
	"sync/atomic"
)

// Response is a definite answer for one URL.
type Response struct {
	// URL is the requested address.
	URL string

	// StatusCode is the final HTTP status.
	StatusCode int

	// Outcome is OutcomeFound or OutcomeAbsent.
	Outcome Outcome

	// Body is the payload of a found tile, nil otherwise.
	Body []byte

	// ContentType is the Content-Type header of the response.
	ContentType string

	// Attempts is the number of requests it took to get this answer.
	Attempts int
}

// Found reports whether the tile exists.
func (r *Response) Found() bool {
	return r != nil && r.Outcome == OutcomeFound
}

// Fetcher retrieves one URL.
//
// Implementations return a Response whose Outcome is OutcomeFound or
// OutcomeAbsent, or an error. A transient failure that survives all retries
// is returned as *TransientError; context cancellation is returned as the
// context error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (*Response, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}

// Counter wraps a Fetcher and counts the fetches issued through it.
// It is safe for concurrent use.
type Counter struct {
	next  Fetcher
	count atomic.Int64
}

// NewCounter returns a Counter in front of next.
func NewCounter(next Fetcher) *Counter {
	return &Counter{next: next}
}

// Fetch implements Fetcher.
func (c *Counter) Fetch(ctx context.Context, url string) (*Response, error) {
	c.count.Add(1)
	return c.next.Fetch(ctx, url)
}

// Count returns the number of fetches issued so far.
func (c *Counter) Count() int64 {
	return c.count.Load()
}
