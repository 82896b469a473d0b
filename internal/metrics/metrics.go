// Package metrics tracks one pipeline run: per-phase durations, per-source
// outcomes, item counts, and a best-effort peak memory reading. The
// collected run converts to a flat document for the store's metrics
// collection and to a human summary for the run notification.
package metrics

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
)

// Phase names recognized by StartPhase. Any other name is measured and
// discarded.
const (
	PhaseCollect = "raw_collect"
	PhaseAnalyze = "analyze"
	PhaseSend    = "send"
)

// SourceResult is the outcome of crawling one source.
type SourceResult struct {
	Source   string
	Success  bool
	Error    string
	Duration time.Duration
	Items    int
	UsedTor  bool
}

// Run is the accumulated telemetry of one pipeline execution.
type Run struct {
	StartedAt time.Time
	EndedAt   time.Time

	CollectDuration time.Duration
	AnalyzeDuration time.Duration
	SendDuration    time.Duration

	PeakMemoryMB float64

	SourceResults []SourceResult
	ItemsAnalyzed int
	ItemsSent     int
}

// TotalDuration is the wall time of the run; for a run still in flight it
// measures up to now.
func (r *Run) TotalDuration() time.Duration {
	if !r.EndedAt.IsZero() {
		return r.EndedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}

// SuccessCount counts sources that crawled without failure.
func (r *Run) SuccessCount() int {
	n := 0
	for _, s := range r.SourceResults {
		if s.Success {
			n++
		}
	}
	return n
}

// FailureCount counts sources that failed.
func (r *Run) FailureCount() int {
	return len(r.SourceResults) - r.SuccessCount()
}

// TorUsageCount counts sources whose crawl used Tor at least once.
func (r *Run) TorUsageCount() int {
	n := 0
	for _, s := range r.SourceResults {
		if s.UsedTor {
			n++
		}
	}
	return n
}

// Collector accumulates one run at a time. Safe for concurrent use; the
// collect phase records source results from several goroutines.
type Collector struct {
	mu  sync.Mutex
	run *Run
}

// NewCollector returns an idle collector.
func NewCollector() *Collector {
	return &Collector{}
}

// StartRun begins a fresh run, discarding any previous one.
func (c *Collector) StartRun() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.run = &Run{StartedAt: time.Now().In(model.KST)}
}

// EndRun stamps the end time and takes the memory reading. The returned
// run is the finished snapshot; nil when no run was started.
func (c *Collector) EndRun() *Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return nil
	}
	c.run.EndedAt = time.Now().In(model.KST)

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	c.run.PeakMemoryMB = float64(stats.HeapInuse) / 1024 / 1024

	return c.run
}

// Snapshot returns the current run, finished or not. Nil before StartRun.
func (c *Collector) Snapshot() *Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run
}

// StartPhase starts timing a pipeline phase. The returned func records the
// elapsed time into the named phase slot; call it via defer so failures
// are measured too.
func (c *Collector) StartPhase(name string) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.run == nil {
			return
		}
		switch name {
		case PhaseCollect:
			c.run.CollectDuration = elapsed
		case PhaseAnalyze:
			c.run.AnalyzeDuration = elapsed
		case PhaseSend:
			c.run.SendDuration = elapsed
		}
	}
}

// SourceScope times one source crawl. Created by StartSource; exactly one
// Finish call records the result.
type SourceScope struct {
	c      *Collector
	source string
	start  time.Time
}

// StartSource begins timing one source crawl.
func (c *Collector) StartSource(source string) *SourceScope {
	return &SourceScope{c: c, source: source, start: time.Now()}
}

// Finish records the crawl outcome. err may be nil on success.
func (s *SourceScope) Finish(success bool, items int, usedTor bool, err error) {
	result := SourceResult{
		Source:   s.source,
		Success:  success,
		Duration: time.Since(s.start),
		Items:    items,
		UsedTor:  usedTor,
	}
	if err != nil {
		result.Error = err.Error()
	}

	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.run == nil {
		return
	}
	s.c.run.SourceResults = append(s.c.run.SourceResults, result)
}

// AddAnalyzed increments the analyzed-item count.
func (c *Collector) AddAnalyzed(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run != nil {
		c.run.ItemsAnalyzed += n
	}
}

// AddSent increments the delivered-item count.
func (c *Collector) AddSent(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run != nil {
		c.run.ItemsSent += n
	}
}

// Document flattens the run into the store's metrics record shape.
func Document(r *Run) map[string]any {
	if r == nil {
		return nil
	}

	sources := make([]map[string]any, 0, len(r.SourceResults))
	for _, s := range r.SourceResults {
		sources = append(sources, map[string]any{
			"district":         s.Source,
			"success":          s.Success,
			"error_message":    s.Error,
			"duration_seconds": s.Duration.Seconds(),
			"items_scraped":    s.Items,
			"used_tor":         s.UsedTor,
		})
	}

	var endedAt any
	if !r.EndedAt.IsZero() {
		endedAt = r.EndedAt.Format(time.RFC3339)
	}

	return map[string]any{
		"started_at":             r.StartedAt.Format(time.RFC3339),
		"ended_at":               endedAt,
		"total_duration_seconds": r.TotalDuration().Seconds(),
		"raw_collect_duration":   r.CollectDuration.Seconds(),
		"analyze_duration":       r.AnalyzeDuration.Seconds(),
		"send_duration":          r.SendDuration.Seconds(),
		"peak_memory_mb":         r.PeakMemoryMB,
		"success_count":          r.SuccessCount(),
		"failure_count":          r.FailureCount(),
		"tor_usage_count":        r.TorUsageCount(),
		"items_analyzed":         r.ItemsAnalyzed,
		"items_sent":             r.ItemsSent,
		"district_results":       sources,
	}
}

// Summary renders the run as the short human report sent at the end of a
// run.
func Summary(r *Run) string {
	if r == nil {
		return ""
	}

	ended := "in progress"
	if !r.EndedAt.IsZero() {
		ended = r.EndedAt.Format("2006-01-02 15:04:05")
	}

	var b strings.Builder
	b.WriteString("=== run summary ===\n")
	fmt.Fprintf(&b, "started: %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "ended: %s\n", ended)
	fmt.Fprintf(&b, "duration: %.1fs\n", r.TotalDuration().Seconds())
	fmt.Fprintf(&b, "memory: %.1fMB\n\n", r.PeakMemoryMB)
	fmt.Fprintf(&b, "[collect] %d/%d sources ok (%.1fs)\n",
		r.SuccessCount(), len(r.SourceResults), r.CollectDuration.Seconds())
	fmt.Fprintf(&b, "[analyze] %d items (%.1fs)\n", r.ItemsAnalyzed, r.AnalyzeDuration.Seconds())
	fmt.Fprintf(&b, "[send] %d items (%.1fs)\n", r.ItemsSent, r.SendDuration.Seconds())
	fmt.Fprintf(&b, "[tor] used by %d sources\n", r.TorUsageCount())
	return b.String()
}
