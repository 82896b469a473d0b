package model

import (
	"testing"
	"time"
)

// TestContentHash tests content hash derivation.
func TestContentHash(t *testing.T) {
	t.Parallel()

	t.Run("same url and content always hash the same", func(t *testing.T) {
		t.Parallel()

		first := ContentHash("https://example.org/view?id=1", "고인 홍길동")
		second := ContentHash("https://example.org/view?id=1", "고인 홍길동")
		if first != second {
			t.Errorf("hash not deterministic: %q vs %q", first, second)
		}
	})

	t.Run("hash is 64 hex characters", func(t *testing.T) {
		t.Parallel()

		h := ContentHash("https://example.org", "content")
		if len(h) != 64 {
			t.Fatalf("len(hash) = %d, expected 64", len(h))
		}
		for _, r := range h {
			if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
				t.Fatalf("hash contains non-hex rune %q", r)
			}
		}
	})

	t.Run("changed content changes the hash", func(t *testing.T) {
		t.Parallel()

		before := ContentHash("https://example.org/view?id=1", "원문")
		after := ContentHash("https://example.org/view?id=1", "수정된 원문")
		if before == after {
			t.Error("different content produced the same hash")
		}
	})

	t.Run("changed url changes the hash", func(t *testing.T) {
		t.Parallel()

		a := ContentHash("https://example.org/view?id=1", "원문")
		b := ContentHash("https://example.org/view?id=2", "원문")
		if a == b {
			t.Error("different urls produced the same hash")
		}
	})

	t.Run("url and content join without a separator", func(t *testing.T) {
		t.Parallel()

		// The hash input is the plain concatenation, so shifting the
		// boundary between url and content must not change it.
		a := ContentHash("https://example.org/ab", "cd")
		b := ContentHash("https://example.org/a", "bcd")
		if a != b {
			t.Errorf("boundary shift changed hash: %q vs %q", a, b)
		}
	})
}

// TestKST tests the fixed Korean timezone.
func TestKST(t *testing.T) {
	t.Parallel()

	_, offset := time.Date(2026, 1, 2, 12, 0, 0, 0, KST).Zone()
	if offset != 9*60*60 {
		t.Errorf("KST offset = %d seconds, expected %d", offset, 9*60*60)
	}
}
