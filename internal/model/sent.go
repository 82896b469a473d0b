package model

import "time"

// SentMarker records that the notice identified by ContentHash was delivered.
// Its presence is the sole delivery signal: a crash after delivery but before
// the marker is written causes a redelivery next run (at-least-once).
type SentMarker struct {
	// ID is the store-assigned record identifier.
	ID string `json:"id,omitempty"`

	// ContentHash identifies the delivered notice.
	ContentHash string `json:"content_hash"`

	// SentAt is the KST delivery timestamp.
	SentAt time.Time `json:"sent_at"`
}
