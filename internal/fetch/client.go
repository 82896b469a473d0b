package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Default client tuning. The district boards are slow legacy front-ends, so
// the timeout is generous; the body limit protects against runaway pages.
const (
	// DefaultTimeout bounds each individual request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize caps how much of a response body is read. List and
	// detail pages are small; attachment images stay well under this too.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultTorRetries is how many Tor attempts follow a blocked direct
	// request (or start the sequence when ForceTor is set).
	DefaultTorRetries = 2

	// DefaultUserAgent is a desktop browser string. Several of the boards
	// serve an error page to obvious bot user agents.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"
)

// Result is a completed retrieval.
type Result struct {
	// StatusCode is the final HTTP status.
	StatusCode int

	// Body is the response body, truncated at the configured limit.
	// The boards serve UTF-8; callers treat this as UTF-8 text except for
	// image downloads.
	Body []byte

	// ViaTor reports whether the successful attempt went through Tor.
	ViaTor bool
}

// Text returns the body decoded as UTF-8 text.
func (r *Result) Text() string {
	return string(r.Body)
}

// Client retrieves pages with automatic Tor failover. It is safe for
// concurrent use.
type Client struct {
	direct      *http.Client
	tor         *http.Client
	userAgent   string
	maxBodySize int64
	torRetries  int
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTorClient sets the HTTP client used for the Tor path. Without one,
// ForceTor requests fail and blocked requests cannot fail over.
func WithTorClient(c *http.Client) Option {
	return func(f *Client) {
		f.tor = c
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Client) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the bytes read from each response body.
func WithMaxBodySize(n int64) Option {
	return func(f *Client) {
		f.maxBodySize = n
	}
}

// WithTorRetries sets how many Tor attempts are made per request.
func WithTorRetries(n int) Option {
	return func(f *Client) {
		if n > 0 {
			f.torRetries = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Client) {
		f.logger = l
	}
}

// NewClient creates a fetcher using the given direct HTTP client. Pass a
// client with the desired timeout; nil uses a default with DefaultTimeout.
func NewClient(direct *http.Client, opts ...Option) *Client {
	if direct == nil {
		direct = &http.Client{Timeout: DefaultTimeout}
	}
	f := &Client{
		direct:      direct,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		torRetries:  DefaultTorRetries,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Get retrieves targetURL with an HTTP GET.
func (f *Client) Get(ctx context.Context, targetURL string, forceTor bool) (*Result, error) {
	return f.Fetch(ctx, targetURL, http.MethodGet, nil, forceTor)
}

// Post retrieves targetURL with a form POST.
func (f *Client) Post(ctx context.Context, targetURL string, form url.Values, forceTor bool) (*Result, error) {
	return f.Fetch(ctx, targetURL, http.MethodPost, form, forceTor)
}

// Fetch retrieves targetURL. When forceTor is false the direct client is
// tried first and the request fails over to Tor only on a block-shaped
// failure; when forceTor is true every attempt uses Tor. After the retry
// budget is spent the last error is returned wrapped in
// ErrRetryBudgetExhausted.
func (f *Client) Fetch(ctx context.Context, targetURL, method string, form url.Values, forceTor bool) (*Result, error) {
	var lastErr error

	if !forceTor {
		res, err := f.do(ctx, f.direct, targetURL, method, form, false)
		if err == nil {
			return res, nil
		}
		if !f.blockShaped(err) {
			return nil, err
		}
		lastErr = err
		f.logger.Debug("direct fetch blocked, failing over to Tor",
			"url", targetURL, "error", err)
	}

	if f.tor == nil {
		if forceTor {
			return nil, ErrNoTorClient
		}
		return nil, lastErr
	}

	for attempt := 0; attempt < f.torRetries; attempt++ {
		res, err := f.do(ctx, f.tor, targetURL, method, form, true)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrRetryBudgetExhausted, targetURL, lastErr)
}

// do performs one attempt on one client.
func (f *Client) do(ctx context.Context, client *http.Client, targetURL, method string, form url.Values, viaTor bool) (*Result, error) {
	var body io.Reader
	if method == http.MethodPost && form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, targetURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: targetURL}
	}

	return &Result{StatusCode: resp.StatusCode, Body: data, ViaTor: viaTor}, nil
}

// blockShaped reports whether an error looks like the source blocking us
// rather than a plain failure. WAF responses (403/429/503), connection
// resets, and timeouts all warrant a Tor retry.
func (f *Client) blockShaped(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusForbidden, http.StatusTooManyRequests,
			http.StatusServiceUnavailable, http.StatusBadGateway:
			return true
		}
		return false
	}
	// Network-level failures: treat as potentially block-induced. The boards
	// that blacklist crawlers drop connections rather than answer.
	return true
}

// StatusError reports a non-2xx/3xx HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
