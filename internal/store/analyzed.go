package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
)

// analyzedRecord is the wire shape of an analyzed notice row. The nine
// structured fields are stored flat, not nested, so NoticeFields is
// embedded to inline them.
type analyzedRecord struct {
	ID          string `json:"id"`
	RawID       string `json:"raw_id"`
	ContentHash string `json:"content_hash"`
	District    string `json:"district"`
	URL         string `json:"url"`
	UpdateCount int    `json:"update_count"`
	model.NoticeFields
}

func (r analyzedRecord) toModel() model.AnalyzedItem {
	return model.AnalyzedItem{
		ID:           r.ID,
		RawRef:       r.RawID,
		ContentHash:  r.ContentHash,
		District:     r.District,
		URL:          r.URL,
		EditionIndex: r.UpdateCount,
		Fields:       r.NoticeFields,
	}
}

// AnalyzedHashes returns the set of content hashes that already have an
// analyzed row. Absent on failure.
func (c *Client) AnalyzedHashes(ctx context.Context) map[string]struct{} {
	items := c.listAll(ctx, collectionAnalyzed, nil)
	if items == nil {
		return nil
	}

	hashes := make(map[string]struct{}, len(items))
	for _, item := range items {
		var rec analyzedRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			c.logger.Error("analyzed record decode failed", "error", err)
			return nil
		}
		hashes[rec.ContentHash] = struct{}{}
	}
	return hashes
}

// UnanalyzedRaw returns the raw rows with no analyzed counterpart, the
// client-side set difference of the two collections. Absent on failure of
// either scan.
func (c *Client) UnanalyzedRaw(ctx context.Context) []model.RawItem {
	analyzed := c.AnalyzedHashes(ctx)
	if analyzed == nil {
		return nil
	}

	items := c.listAll(ctx, collectionRaw, nil)
	if items == nil {
		return nil
	}

	pending := make([]model.RawItem, 0, len(items))
	for _, item := range items {
		var rec rawRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			c.logger.Error("raw record decode failed", "error", err)
			return nil
		}
		if _, done := analyzed[rec.ContentHash]; done {
			continue
		}
		pending = append(pending, rec.toModel())
	}
	return pending
}

// AnalyzedExists reports whether an analyzed row already exists for the
// hash. ok=false means the check itself failed; callers must then skip the
// insert rather than risk a duplicate.
func (c *Client) AnalyzedExists(ctx context.Context, contentHash string) (exists, ok bool) {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf("content_hash='%s'", contentHash))

	items := c.listAll(ctx, collectionAnalyzed, params)
	if items == nil {
		return false, false
	}
	return len(items) > 0, true
}

// AddAnalyzed stores one enrichment result unless a row for the hash
// already exists, enforcing the at-most-one-per-hash invariant. ok reports
// that the hash has a row after the call, created or pre-existing; created
// is nil when the insert was skipped. When the existence check itself
// fails, the insert is skipped too, because inserting blind could create a
// duplicate.
func (c *Client) AddAnalyzed(ctx context.Context, item model.AnalyzedItem) (created *model.AnalyzedItem, ok bool) {
	exists, checked := c.AnalyzedExists(ctx, item.ContentHash)
	if !checked {
		return nil, false
	}
	if exists {
		c.logger.Debug("analyzed row already present, skipping insert",
			"content_hash", item.ContentHash)
		return nil, true
	}

	payload := map[string]any{
		"raw_id":             item.RawRef,
		"content_hash":       item.ContentHash,
		"district":           item.District,
		"url":                item.URL,
		"update_count":       item.EditionIndex,
		"name":               item.Fields.Name,
		"birth_date":         item.Fields.BirthDate,
		"residence":          item.Fields.Residence,
		"death_datetime":     item.Fields.DeathDatetime,
		"death_place":        item.Fields.DeathPlace,
		"funeral_schedule":   item.Fields.FuneralSchedule,
		"funeral_place":      item.Fields.FuneralPlace,
		"departure_datetime": item.Fields.DepartureDatetime,
		"cremation_datetime": item.Fields.CremationDatetime,
		"analyzed_at":        nowKST(),
	}

	body, sent := c.request(ctx, http.MethodPost, collectionAnalyzed+"/records", payload, nil)
	if !sent {
		return nil, false
	}

	var rec analyzedRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		c.logger.Error("analyzed insert decode failed", "error", err)
		return nil, false
	}
	row := rec.toModel()
	return &row, true
}
