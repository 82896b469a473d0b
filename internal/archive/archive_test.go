package archive

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/moah0o0/public-funeral-scrapper/internal/metrics"
)

func finishedRun(t *testing.T) *metrics.Run {
	t.Helper()
	started := time.Date(2026, 8, 25, 4, 0, 0, 0, time.UTC)
	return &metrics.Run{
		StartedAt:       started,
		EndedAt:         started.Add(90 * time.Second),
		CollectDuration: 60 * time.Second,
		AnalyzeDuration: 20 * time.Second,
		SendDuration:    10 * time.Second,
		PeakMemoryMB:    42.5,
		ItemsAnalyzed:   3,
		ItemsSent:       2,
		SourceResults: []metrics.SourceResult{
			{Source: "북구", Success: true, Duration: 5 * time.Second, Items: 2},
			{Source: "사하구", Success: false, Error: "list page fetch failed",
				Duration: 30 * time.Second, UsedTor: true},
		},
	}
}

// TestOpen tests database creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates the database when allowed", func(t *testing.T) {
		t.Parallel()

		a, err := Open(t.TempDir(), DefaultOptions())
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() { a.Close() }) //nolint:errcheck

		history, err := a.RunHistory(context.Background(), 5)
		if err != nil {
			t.Fatalf("RunHistory on a fresh archive: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("history = %d runs, expected 0", len(history))
		}
	})

	t.Run("refuses a missing database without create", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.CreateIfNotExists = false
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("Open succeeded against a missing database")
		}
	})
}

// TestSaveRun tests the archive roundtrip.
func TestSaveRun(t *testing.T) {
	t.Parallel()

	a, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() }) //nolint:errcheck

	ctx := context.Background()
	runID, err := a.SaveRun(ctx, finishedRun(t))
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if runID <= 0 {
		t.Fatalf("runID = %d, expected positive", runID)
	}

	history, err := a.RunHistory(ctx, 10)
	if err != nil {
		t.Fatalf("RunHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history = %d runs, expected 1", len(history))
	}

	rec := history[0]
	if rec.ID != runID {
		t.Errorf("ID = %d, expected %d", rec.ID, runID)
	}
	if rec.SuccessCount != 1 || rec.FailureCount != 1 {
		t.Errorf("success/failure = %d/%d, expected 1/1", rec.SuccessCount, rec.FailureCount)
	}
	if rec.ItemsAnalyzed != 3 || rec.ItemsSent != 2 {
		t.Errorf("analyzed/sent = %d/%d, expected 3/2", rec.ItemsAnalyzed, rec.ItemsSent)
	}
	if rec.TorUsageCount != 1 {
		t.Errorf("TorUsageCount = %d, expected 1", rec.TorUsageCount)
	}
	if rec.Duration != 90*time.Second {
		t.Errorf("Duration = %v, expected 90s", rec.Duration)
	}
	if rec.StartedAt.IsZero() || rec.EndedAt.IsZero() {
		t.Errorf("timestamps not decoded: started=%v ended=%v", rec.StartedAt, rec.EndedAt)
	}
	if !strings.Contains(rec.MetricsJSON, `"district":"북구"`) {
		t.Errorf("MetricsJSON missing district results: %s", rec.MetricsJSON)
	}

	t.Run("nil run is refused", func(t *testing.T) {
		if _, err := a.SaveRun(ctx, nil); err == nil {
			t.Error("SaveRun accepted a nil run")
		}
	})
}

// TestRunHistoryOrder tests that history is newest first.
func TestRunHistoryOrder(t *testing.T) {
	t.Parallel()

	a, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() }) //nolint:errcheck

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		run := finishedRun(t)
		run.StartedAt = run.StartedAt.Add(time.Duration(i) * time.Hour)
		run.EndedAt = run.StartedAt.Add(time.Minute)
		if _, err := a.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun #%d: %v", i, err)
		}
	}

	history, err := a.RunHistory(ctx, 2)
	if err != nil {
		t.Fatalf("RunHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %d runs, expected the limit of 2", len(history))
	}
	if !history[0].StartedAt.After(history[1].StartedAt) {
		t.Errorf("history not newest first: %v then %v",
			history[0].StartedAt, history[1].StartedAt)
	}
}

// TestSourceHistory tests per-district outcome retrieval.
func TestSourceHistory(t *testing.T) {
	t.Parallel()

	a, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() }) //nolint:errcheck

	ctx := context.Background()
	if _, err := a.SaveRun(ctx, finishedRun(t)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	results, err := a.SourceHistory(ctx, "사하구", 10)
	if err != nil {
		t.Fatalf("SourceHistory: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, expected 1", len(results))
	}
	res := results[0]
	if res.Source != "사하구" || res.Success {
		t.Errorf("result = %+v, expected failed 사하구 crawl", res)
	}
	if res.Error != "list page fetch failed" {
		t.Errorf("Error = %q", res.Error)
	}
	if !res.UsedTor {
		t.Error("UsedTor not preserved")
	}

	if results, err := a.SourceHistory(ctx, "없는구", 10); err != nil || len(results) != 0 {
		t.Errorf("unknown district: results=%d err=%v, expected none", len(results), err)
	}
}

// TestParseTimestamp tests the formats SQLite hands back.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{"rfc3339", "2026-08-25T04:00:00Z", false},
		{"rfc3339 nano", "2026-08-25T04:00:00.123456789Z", false},
		{"sqlite space form", "2026-08-25 04:00:00", false},
		{"no zone", "2026-08-25T04:00:00", false},
		{"empty", "", true},
		{"garbage", "yesterday-ish", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v, zero expectation %v", tt.input, got, tt.zero)
			}
		})
	}
}
