package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultRetries     = 3
	defaultBackoff     = 500 * time.Millisecond
	defaultMaxBackoff  = 10 * time.Second
	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = 32 << 20
	defaultUserAgent   = "cubegrab/1.0 (+https://github.com/nao1215/cubegrab)"
)

// HTTPFetcher fetches tiles over HTTP with a per-attempt timeout and bounded
// retry of transient failures.
type HTTPFetcher struct {
	client      *http.Client
	retries     int
	backoff     time.Duration
	maxBackoff  time.Duration
	timeout     time.Duration
	maxBodySize int64
	userAgent   string
	headers     map[string]string
	logger      *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithRetries sets how many times a transient failure is retried.
// 0 disables retries.
func WithRetries(n int) Option {
	return func(f *HTTPFetcher) {
		if n >= 0 {
			f.retries = n
		}
	}
}

// WithBackoff sets the first retry delay and the cap the doubling delay never exceeds.
func WithBackoff(initial, maxDelay time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.backoff = initial
		f.maxBackoff = maxDelay
	}
}

// WithTimeout sets the timeout of every single attempt.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize limits how many bytes of a tile are accepted.
func WithMaxBodySize(n int64) Option {
	return func(f *HTTPFetcher) {
		f.maxBodySize = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *HTTPFetcher) {
		f.headers = headers
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher returns a fetcher using client, or http.DefaultClient when client is nil.
func NewHTTPFetcher(client *http.Client, opts ...Option) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &HTTPFetcher{
		client:      client,
		retries:     defaultRetries,
		backoff:     defaultBackoff,
		maxBackoff:  defaultMaxBackoff,
		timeout:     defaultTimeout,
		maxBodySize: defaultMaxBodySize,
		userAgent:   defaultUserAgent,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	for attempt := 1; ; attempt++ {
		resp, err := f.attempt(ctx, url)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err == nil && resp.Outcome != OutcomeTransient {
			resp.Attempts = attempt
			return resp, nil
		}
		if errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrBodyTooLarge) {
			return nil, err
		}

		status := 0
		cause := err
		if resp != nil {
			status = resp.StatusCode
			cause = fmt.Errorf("unexpected status %d", status)
		}
		if attempt > f.retries {
			return nil, &TransientError{URL: url, Attempts: attempt, StatusCode: status, Err: cause}
		}

		delay := f.delay(attempt)
		f.logger.Debug("retrying transient fetch failure",
			slog.String("url", url),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("cause", cause.Error()))

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// attempt issues one request. A transient status is returned as a Response
// with OutcomeTransient; transport failures are returned as errors.
func (f *HTTPFetcher) attempt(ctx context.Context, url string) (*Response, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/jpeg,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	r := &Response{
		URL:         url,
		StatusCode:  resp.StatusCode,
		Outcome:     Classify(resp.StatusCode),
		ContentType: resp.Header.Get("Content-Type"),
	}
	if r.Outcome != OutcomeFound {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10)) //nolint:errcheck // best effort
		return r, nil
	}

	reader := io.Reader(resp.Body)
	if f.maxBodySize > 0 {
		reader = io.LimitReader(resp.Body, f.maxBodySize+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if f.maxBodySize > 0 && int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, url, f.maxBodySize)
	}
	r.Body = body
	return r, nil
}

// delay returns the backoff before retry number attempt (1-based).
func (f *HTTPFetcher) delay(attempt int) time.Duration {
	d := f.backoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if f.maxBackoff > 0 && d >= f.maxBackoff {
			return f.maxBackoff
		}
	}
	if f.maxBackoff > 0 && d > f.maxBackoff {
		return f.maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
