// Package enrich calls the external analysis service that turns a raw
// notice's free text into the nine structured fields. The service contract
// is one JSON POST per notice; everything about how the extraction happens
// lives on the other side.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
)

// ErrNotConfigured is returned when the analyzer has no endpoint.
var ErrNotConfigured = errors.New("enrich: no endpoint configured")

// defaultTimeout bounds one analysis call. Extraction over long notice
// text is slow, so this is generous.
const defaultTimeout = 120 * time.Second

// Analyzer extracts structured fields from one raw notice. The pipeline
// depends on this interface; tests substitute a stub.
type Analyzer interface {
	Analyze(ctx context.Context, item model.RawItem) (model.NoticeFields, error)
}

// Client is the HTTP Analyzer implementation.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates an analysis client. An empty endpoint yields a client
// whose Analyze always fails with ErrNotConfigured.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{endpoint: endpoint, apiKey: apiKey}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	return c
}

// Analyze submits the notice text and edition index and decodes the nine
// structured fields from the response.
func (c *Client) Analyze(ctx context.Context, item model.RawItem) (model.NoticeFields, error) {
	if c.endpoint == "" {
		return model.NoticeFields{}, ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]any{
		"url":          item.URL,
		"content":      item.Content,
		"update_count": item.EditionIndex,
	})
	if err != nil {
		return model.NoticeFields{}, fmt.Errorf("enrich: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.NoticeFields{}, fmt.Errorf("enrich: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return model.NoticeFields{}, fmt.Errorf("enrich: request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.NoticeFields{}, fmt.Errorf("enrich: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.NoticeFields{}, fmt.Errorf("enrich: analysis rejected with status %d", resp.StatusCode)
	}

	var fields model.NoticeFields
	if err := json.Unmarshal(body, &fields); err != nil {
		return model.NoticeFields{}, fmt.Errorf("enrich: decode response: %w", err)
	}
	return fields, nil
}
