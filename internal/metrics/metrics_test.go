package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// TestCollectorLifecycle tests run start, phase timing, and finalization.
func TestCollectorLifecycle(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	if c.Snapshot() != nil {
		t.Fatal("Snapshot before StartRun, expected nil")
	}
	if c.EndRun() != nil {
		t.Fatal("EndRun before StartRun, expected nil")
	}

	c.StartRun()
	done := c.StartPhase(PhaseAnalyze)
	time.Sleep(10 * time.Millisecond)
	done()

	c.AddAnalyzed(3)
	c.AddSent(2)

	run := c.EndRun()
	if run == nil {
		t.Fatal("EndRun returned nil after StartRun")
	}
	if run.AnalyzeDuration <= 0 {
		t.Errorf("AnalyzeDuration = %v, expected positive", run.AnalyzeDuration)
	}
	if run.CollectDuration != 0 {
		t.Errorf("CollectDuration = %v, expected untouched", run.CollectDuration)
	}
	if run.ItemsAnalyzed != 3 || run.ItemsSent != 2 {
		t.Errorf("items = %d/%d, expected 3/2", run.ItemsAnalyzed, run.ItemsSent)
	}
	if run.EndedAt.IsZero() {
		t.Error("EndedAt not stamped")
	}
	if run.PeakMemoryMB <= 0 {
		t.Errorf("PeakMemoryMB = %v, expected positive", run.PeakMemoryMB)
	}
	if run.TotalDuration() < run.AnalyzeDuration {
		t.Errorf("TotalDuration = %v shorter than the analyze phase", run.TotalDuration())
	}
}

// TestSourceScope tests per-source outcome recording.
func TestSourceScope(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.StartRun()

	c.StartSource("BUKGU").Finish(true, 4, false, nil)
	c.StartSource("SAHA").Finish(false, 0, true, errors.New("blocked"))

	run := c.Snapshot()
	if len(run.SourceResults) != 2 {
		t.Fatalf("source results = %d, expected 2", len(run.SourceResults))
	}
	if run.SuccessCount() != 1 || run.FailureCount() != 1 {
		t.Errorf("success/failure = %d/%d, expected 1/1", run.SuccessCount(), run.FailureCount())
	}
	if run.TorUsageCount() != 1 {
		t.Errorf("tor usage = %d, expected 1", run.TorUsageCount())
	}
	if run.SourceResults[1].Error != "blocked" {
		t.Errorf("Error = %q, expected the crawl error text", run.SourceResults[1].Error)
	}
	if run.SourceResults[0].Items != 4 {
		t.Errorf("Items = %d, expected 4", run.SourceResults[0].Items)
	}
}

// TestDocument tests the flat metrics-record shape.
func TestDocument(t *testing.T) {
	t.Parallel()

	if Document(nil) != nil {
		t.Error("Document(nil) != nil")
	}

	c := NewCollector()
	c.StartRun()
	c.StartSource("BUKGU").Finish(true, 2, true, nil)
	c.AddAnalyzed(2)
	c.AddSent(1)
	doc := Document(c.EndRun())

	for _, key := range []string{
		"started_at", "ended_at", "total_duration_seconds",
		"raw_collect_duration", "analyze_duration", "send_duration",
		"peak_memory_mb", "success_count", "failure_count",
		"tor_usage_count", "items_analyzed", "items_sent",
		"district_results",
	} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing key %q", key)
		}
	}

	if doc["items_analyzed"] != 2 || doc["items_sent"] != 1 {
		t.Errorf("items = %v/%v, expected 2/1", doc["items_analyzed"], doc["items_sent"])
	}
	sources, ok := doc["district_results"].([]map[string]any)
	if !ok || len(sources) != 1 {
		t.Fatalf("district_results = %T(%v), expected one entry", doc["district_results"], doc["district_results"])
	}
	if sources[0]["district"] != "BUKGU" {
		t.Errorf("district = %v, expected BUKGU", sources[0]["district"])
	}
	if sources[0]["used_tor"] != true {
		t.Errorf("used_tor = %v, expected true", sources[0]["used_tor"])
	}
}

// TestSummary tests the human-readable run report.
func TestSummary(t *testing.T) {
	t.Parallel()

	if Summary(nil) != "" {
		t.Error("Summary(nil) not empty")
	}

	c := NewCollector()
	c.StartRun()
	c.StartSource("BUKGU").Finish(true, 2, false, nil)
	c.AddAnalyzed(2)
	c.AddSent(2)
	got := Summary(c.EndRun())

	for _, want := range []string{"run summary", "1/1 sources ok", "[analyze] 2 items", "[send] 2 items"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}
