package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
)

// Collection names in the remote store.
const (
	collectionRaw      = "funeral_raw"
	collectionAnalyzed = "funeral_analyzed"
	collectionSent     = "funeral_sent"
	collectionLog      = "scraper_log"
	collectionMetrics  = "scraper_metrics"
)

// pageSize is the fixed page size for full-collection scans. The store
// reports a totalPages sentinel that terminates the loop.
const pageSize = 500

// requestTimeout bounds each store request.
const requestTimeout = 30 * time.Second

// ErrNotAuthenticated is returned by Authenticate when the credential
// exchange does not yield a token.
var ErrNotAuthenticated = errors.New("store: authentication did not yield a token")

// Client talks to the record store's REST API. Safe for concurrent use;
// the cached auth token is the only shared mutable state and is
// mutex-guarded for the collect phase's optional per-source fan-out.
type Client struct {
	baseURL  string
	identity string
	password string
	http     *http.Client
	logger   *slog.Logger

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (tests use httptest servers).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a store client for the given base URL and user
// credentials. No network traffic happens until the first call.
func NewClient(baseURL, identity, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		identity: identity,
		password: password,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: requestTimeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Authenticate exchanges the configured credentials for a bearer token and
// caches it for subsequent requests.
func (c *Client) Authenticate(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"identity": c.identity,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("store: marshal credentials: %w", err)
	}

	endpoint := c.baseURL + "/api/collections/users/auth-with-password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("store: build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store: auth request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("store: read auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("store: auth rejected with status %d", resp.StatusCode)
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("store: decode auth response: %w", err)
	}
	if parsed.Token == "" {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	c.token = parsed.Token
	c.mu.Unlock()
	return nil
}

// currentToken returns the cached token, authenticating first if none is
// cached yet.
func (c *Client) currentToken(ctx context.Context) string {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token
	}
	if err := c.Authenticate(ctx); err != nil {
		c.logger.Error("store authentication failed", "error", err)
		return ""
	}
	c.mu.Lock()
	token = c.token
	c.mu.Unlock()
	return token
}

// request performs one store API call and returns the response body, or
// ok=false after logging. On an unauthorized/forbidden response, or a 400
// whose message mentions an access rule, it reauthenticates once and
// retries the same request exactly once.
func (c *Client) request(ctx context.Context, method, endpoint string, body any, query url.Values) ([]byte, bool) {
	data, status, ok := c.attempt(ctx, method, endpoint, body, query)
	if ok {
		return data, true
	}
	if !authFailure(status, data) {
		return nil, false
	}

	c.logger.Warn("auth-shaped store failure, reauthenticating once", "endpoint", endpoint)
	if err := c.Authenticate(ctx); err != nil {
		c.logger.Error("store reauthentication failed", "error", err)
		return nil, false
	}
	data, _, ok = c.attempt(ctx, method, endpoint, body, query)
	if !ok {
		return nil, false
	}
	return data, true
}

// authFailure classifies a rejected response as stale-token shaped.
// Unauthorized and forbidden are direct signals; a 400 counts only when
// the store's error message mentions an access rule, which is how
// rule-protected collections reject expired tokens on writes.
func authFailure(status int, body []byte) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		return strings.Contains(strings.ToLower(string(body)), "rule")
	default:
		return false
	}
}

// attempt performs a single HTTP exchange. On rejection it returns the
// response status and error body with ok=false so the caller can classify
// the failure.
func (c *Client) attempt(ctx context.Context, method, endpoint string, body any, query url.Values) ([]byte, int, bool) {
	fullURL := c.baseURL + "/api/collections/" + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.logger.Error("store request marshal failed", "endpoint", endpoint, "error", err)
			return nil, 0, false
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		c.logger.Error("store request build failed", "endpoint", endpoint, "error", err)
		return nil, 0, false
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.currentToken(ctx); token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("store request failed", "endpoint", endpoint, "error", err)
		return nil, 0, false
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		c.logger.Error("store response read failed", "endpoint", endpoint, "error", err)
		return nil, resp.StatusCode, false
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, resp.StatusCode, true
	}

	c.logger.Error("store request rejected",
		"endpoint", endpoint, "status", resp.StatusCode,
		"body", truncate(string(respBody), 500))
	return respBody, resp.StatusCode, false
}

// listResponse is the paged envelope every collection listing returns.
type listResponse struct {
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalPages int               `json:"totalPages"`
	Items      []json.RawMessage `json:"items"`
}

// listAll pages through an entire collection listing with the given query
// parameters, concatenating items until the store's totalPages sentinel is
// reached. A failed page aborts the scan and returns absent (nil); an empty
// collection returns an empty non-nil slice so callers can tell the two
// apart.
func (c *Client) listAll(ctx context.Context, collection string, params url.Values) []json.RawMessage {
	items := make([]json.RawMessage, 0, pageSize)
	for page := 1; ; page++ {
		query := url.Values{}
		for k, vs := range params {
			query[k] = vs
		}
		query.Set("perPage", strconv.Itoa(pageSize))
		query.Set("page", strconv.Itoa(page))

		body, ok := c.request(ctx, http.MethodGet, collection+"/records", nil, query)
		if !ok {
			return nil
		}

		var parsed listResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			c.logger.Error("store list decode failed", "collection", collection, "error", err)
			return nil
		}
		if len(parsed.Items) == 0 {
			break
		}
		items = append(items, parsed.Items...)
		if page >= parsed.TotalPages {
			break
		}
	}
	return items
}

// nowKST formats the current KST time the way the store expects.
func nowKST() string {
	return time.Now().In(model.KST).Format(time.RFC3339)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
