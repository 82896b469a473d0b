package model

import "time"

// AnalyzedItem is the enrichment result for one RawItem. At most one
// AnalyzedItem exists per ContentHash; the store client enforces this with a
// pre-insert existence check. Immutable once persisted.
type AnalyzedItem struct {
	// ID is the store-assigned record identifier.
	ID string `json:"id,omitempty"`

	// RawRef is the store record ID of the RawItem this was derived from.
	RawRef string `json:"raw_id"`

	// ContentHash joins this record to its RawItem and SentMarker.
	ContentHash string `json:"content_hash"`

	// District, URL, and EditionIndex are denormalized from the RawItem so
	// delivery never needs to read the raw collection.
	District     string `json:"district"`
	URL          string `json:"url"`
	EditionIndex int    `json:"update_count"`

	// Fields holds the nine structured fields from enrichment.
	Fields NoticeFields `json:"fields"`

	// AnalyzedAt is the KST enrichment timestamp.
	AnalyzedAt time.Time `json:"analyzed_at"`
}
