package store

import (
	"context"
	"net/http"
)

// SaveLog writes one structured log row to the store's log collection.
// Best-effort: returns whether the row was written.
func (c *Client) SaveLog(ctx context.Context, level, message, functionName, errorTrace string) bool {
	payload := map[string]any{
		"level":         level,
		"message":       message,
		"function_name": functionName,
		"error_trace":   errorTrace,
		"logged_at":     nowKST(),
	}
	_, ok := c.request(ctx, http.MethodPost, collectionLog+"/records", payload, nil)
	return ok
}

// SaveMetrics writes one run's metrics document. Best-effort: returns
// whether the row was written.
func (c *Client) SaveMetrics(ctx context.Context, payload map[string]any) bool {
	_, ok := c.request(ctx, http.MethodPost, collectionMetrics+"/records", payload, nil)
	return ok
}
