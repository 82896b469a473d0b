package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// KST is the Korea Standard Time zone used for all persisted timestamps.
// The municipal boards, the operators, and the store records all live in
// this zone, so we persist KST rather than UTC to keep records comparable
// with what the boards display.
var KST = time.FixedZone("KST", 9*60*60)

// ScrapedItem is a single notice yielded by a scraper: the canonical detail
// URL and the normalized notice text. Items with empty content are never
// yielded.
type ScrapedItem struct {
	// URL is the canonical detail page URL of the notice.
	URL string

	// Content is the normalized notice text extracted from the page.
	Content string
}

// RawItem is a scraped notice persisted by the collect stage.
// RawItems are immutable once persisted.
type RawItem struct {
	// ID is the store-assigned record identifier.
	ID string `json:"id,omitempty"`

	// District is the Korean display name of the source district.
	District string `json:"district"`

	// URL is the canonical detail page URL.
	URL string `json:"url"`

	// Content is the normalized notice text.
	Content string `json:"content"`

	// ContentHash is ContentHash(URL, Content), the cross-stage join key.
	ContentHash string `json:"content_hash"`

	// EditionIndex counts prior RawItems sharing (District, URL) at insert
	// time. A notice edited and reposted at the same URL gets index 1, 2, ...
	// The value is a snapshot of a live count and is never recomputed, so it
	// is monotonic-ish rather than gapless.
	EditionIndex int `json:"update_count"`

	// ScrapedAt is the KST insertion timestamp.
	ScrapedAt time.Time `json:"scraped_at"`
}

// ContentHash returns the deterministic digest joining a notice across the
// raw, analyzed, and sent stages. It is a pure function of (url, content):
// the hex-encoded SHA-256 of their concatenation.
func ContentHash(url, content string) string {
	sum := sha256.Sum256([]byte(url + content))
	return hex.EncodeToString(sum[:])
}
