package store

import (
	"context"
	"encoding/json"
	"net/url"
)

// CleanupOrphanSent deletes delivery markers whose content hash has no
// analyzed row, which happens when analyzed records are removed by hand.
// Returns the number of markers deleted, or -1 when the scan failed.
func (c *Client) CleanupOrphanSent(ctx context.Context) int {
	analyzed := c.AnalyzedHashes(ctx)
	if analyzed == nil {
		return -1
	}

	items := c.listAll(ctx, collectionSent, nil)
	if items == nil {
		return -1
	}

	deleted := 0
	for _, item := range items {
		var rec sentRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			c.logger.Error("sent record decode failed", "error", err)
			return -1
		}
		if _, exists := analyzed[rec.ContentHash]; exists {
			continue
		}
		if c.DeleteSent(ctx, rec.ID) {
			c.logger.Info("orphan delivery marker removed",
				"id", rec.ID, "content_hash", rec.ContentHash)
			deleted++
		}
	}
	return deleted
}

// CleanupDuplicateSent deletes all but the newest delivery marker per
// content hash. Markers are listed newest-first so the first occurrence of
// each hash is the keeper. Returns the number deleted, or -1 when the scan
// failed.
func (c *Client) CleanupDuplicateSent(ctx context.Context) int {
	params := url.Values{}
	params.Set("sort", "-sent_at")

	items := c.listAll(ctx, collectionSent, params)
	if items == nil {
		return -1
	}

	seen := make(map[string]bool, len(items))
	deleted := 0
	for _, item := range items {
		var rec sentRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			c.logger.Error("sent record decode failed", "error", err)
			return -1
		}
		if !seen[rec.ContentHash] {
			seen[rec.ContentHash] = true
			continue
		}
		if c.DeleteSent(ctx, rec.ID) {
			c.logger.Info("duplicate delivery marker removed",
				"id", rec.ID, "content_hash", rec.ContentHash)
			deleted++
		}
	}
	return deleted
}
