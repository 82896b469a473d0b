package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
)

// rawRecord is the wire shape of a raw notice row. Timestamps stay as the
// store's strings; nothing downstream reads them back.
type rawRecord struct {
	ID          string `json:"id"`
	District    string `json:"district"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	ContentHash string `json:"content_hash"`
	UpdateCount int    `json:"update_count"`
}

func (r rawRecord) toModel() model.RawItem {
	return model.RawItem{
		ID:           r.ID,
		District:     r.District,
		URL:          r.URL,
		Content:      r.Content,
		ContentHash:  r.ContentHash,
		EditionIndex: r.UpdateCount,
	}
}

// RawContentsByDistrict returns the exact content strings already stored
// for one district. The collect phase diffs freshly scraped text against
// this set, so the comparison key is the verbatim string, not the hash.
// Absent on failure.
func (c *Client) RawContentsByDistrict(ctx context.Context, district string) []string {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf("district='%s'", district))

	items := c.listAll(ctx, collectionRaw, params)
	if items == nil {
		return nil
	}

	contents := make([]string, 0, len(items))
	for _, item := range items {
		var rec rawRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			c.logger.Error("raw record decode failed", "error", err)
			return nil
		}
		contents = append(contents, rec.Content)
	}
	return contents
}

// CountSameURL returns how many raw rows already exist for the given
// district and item URL. The next edition of a changed notice is stored
// with this count as its edition index. Returns -1 on failure so a failed
// count is distinguishable from a genuine zero.
func (c *Client) CountSameURL(ctx context.Context, district, itemURL string) int {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf("district='%s' && url='%s'", district, itemURL))

	items := c.listAll(ctx, collectionRaw, params)
	if items == nil {
		return -1
	}
	return len(items)
}

// AddRaw stores one raw notice edition and returns the created row, or nil
// on failure. The content hash is computed here so every insert path hashes
// the same way.
func (c *Client) AddRaw(ctx context.Context, district, itemURL, content string, editionIndex int) *model.RawItem {
	payload := map[string]any{
		"district":     district,
		"url":          itemURL,
		"content":      content,
		"content_hash": model.ContentHash(itemURL, content),
		"update_count": editionIndex,
		"scraped_at":   nowKST(),
	}

	body, ok := c.request(ctx, http.MethodPost, collectionRaw+"/records", payload, nil)
	if !ok {
		return nil
	}

	var rec rawRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		c.logger.Error("raw insert decode failed", "error", err)
		return nil
	}
	item := rec.toModel()
	return &item
}
