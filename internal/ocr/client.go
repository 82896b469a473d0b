package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrDisabled is returned by Recognize when the client has no credentials.
// Callers treat this as "OCR unavailable", not as a scrape failure.
var ErrDisabled = errors.New("ocr: no credentials configured")

// requestTimeout bounds one recognition call. Table detection on a full
// notice image takes a few seconds server-side.
const requestTimeout = 30 * time.Second

// Word is one recognized token inside a table cell line.
type Word struct {
	Text string `json:"inferText"`
}

// TextLine is one line of words inside a table cell.
type TextLine struct {
	Words []Word `json:"cellWords"`
}

// Cell is one table cell.
type Cell struct {
	TextLines []TextLine `json:"cellTextLines"`
}

// Table is one detected table.
type Table struct {
	Cells []Cell `json:"cells"`
}

// Document is the recognized structure of one image.
type Document struct {
	Tables []Table `json:"tables"`
}

// response mirrors the service's envelope: one entry per submitted image.
type response struct {
	Images []Document `json:"images"`
}

// Client calls the OCR HTTP endpoint. A zero-credential client is valid but
// disabled; Recognize then returns ErrDisabled.
type Client struct {
	endpoint string
	secret   string
	http     *http.Client
}

// NewClient creates an OCR client. Empty endpoint or secret produces a
// disabled client.
func NewClient(endpoint, secret string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{endpoint: endpoint, secret: secret, http: httpClient}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.endpoint != "" && c.secret != ""
}

// Recognize submits an image for table-aware recognition and returns the
// recognized document. An image with no detected tables yields a Document
// with an empty Tables slice, not an error.
func (c *Client) Recognize(ctx context.Context, image []byte) (*Document, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	name := uuid.NewString()
	meta := map[string]any{
		"images":               []map[string]string{{"format": "jpg", "name": name + ".jpg"}},
		"requestId":            name,
		"version":              "V1",
		"timestamp":            time.Now().UnixMilli(),
		"enableTableDetection": true,
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("ocr: marshal request: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("message", string(metaJSON)); err != nil {
		return nil, fmt.Errorf("ocr: write message part: %w", err)
	}
	fw, err := mw.CreateFormFile("file", name+".jpg")
	if err != nil {
		return nil, fmt.Errorf("ocr: create file part: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return nil, fmt.Errorf("ocr: write image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("ocr: finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("ocr: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-OCR-SECRET", c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr: request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("ocr: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr: unexpected status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("ocr: decode response: %w", err)
	}
	if len(parsed.Images) == 0 {
		return &Document{}, nil
	}
	return &parsed.Images[0], nil
}
