package store

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
)

// sentRecord is the wire shape of a delivery marker row.
type sentRecord struct {
	ID          string `json:"id"`
	ContentHash string `json:"content_hash"`
	SentAt      string `json:"sent_at"`
}

// SentHashes returns the set of content hashes that already have a
// delivery marker. Absent on failure.
func (c *Client) SentHashes(ctx context.Context) map[string]struct{} {
	items := c.listAll(ctx, collectionSent, nil)
	if items == nil {
		return nil
	}

	hashes := make(map[string]struct{}, len(items))
	for _, item := range items {
		var rec sentRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			c.logger.Error("sent record decode failed", "error", err)
			return nil
		}
		hashes[rec.ContentHash] = struct{}{}
	}
	return hashes
}

// UnsentAnalyzed returns the analyzed rows with no delivery marker, the
// client-side set difference of the two collections. Absent on failure of
// either scan.
func (c *Client) UnsentAnalyzed(ctx context.Context) []model.AnalyzedItem {
	sent := c.SentHashes(ctx)
	if sent == nil {
		return nil
	}

	items := c.listAll(ctx, collectionAnalyzed, nil)
	if items == nil {
		return nil
	}

	pending := make([]model.AnalyzedItem, 0, len(items))
	for _, item := range items {
		var rec analyzedRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			c.logger.Error("analyzed record decode failed", "error", err)
			return nil
		}
		if _, done := sent[rec.ContentHash]; done {
			continue
		}
		pending = append(pending, rec.toModel())
	}
	return pending
}

// MarkSent records a delivery marker for the hash after a confirmed send.
// Returns the created marker, or nil on failure; a failed marker write
// leaves the notice eligible for redelivery on the next run, which is the
// intended at-least-once behavior.
func (c *Client) MarkSent(ctx context.Context, contentHash string) *model.SentMarker {
	payload := map[string]any{
		"content_hash": contentHash,
		"sent_at":      nowKST(),
	}

	body, ok := c.request(ctx, http.MethodPost, collectionSent+"/records", payload, nil)
	if !ok {
		return nil
	}

	var rec sentRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		c.logger.Error("sent insert decode failed", "error", err)
		return nil
	}
	return &model.SentMarker{ID: rec.ID, ContentHash: rec.ContentHash}
}

// DeleteSent removes one delivery marker by record ID.
func (c *Client) DeleteSent(ctx context.Context, id string) bool {
	_, ok := c.request(ctx, http.MethodDelete, collectionSent+"/records/"+id, nil, nil)
	return ok
}
