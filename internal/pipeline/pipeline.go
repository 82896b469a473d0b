package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/moah0o0/public-funeral-scrapper/internal/enrich"
	"github.com/moah0o0/public-funeral-scrapper/internal/metrics"
	"github.com/moah0o0/public-funeral-scrapper/internal/model"
	"github.com/moah0o0/public-funeral-scrapper/internal/notify"
	"github.com/moah0o0/public-funeral-scrapper/internal/source"
)

// ErrStoreUnavailable is returned when a phase cannot list its work set
// from the store. Individual item failures never abort a phase; a failed
// listing does, because the phase has nothing to iterate.
var ErrStoreUnavailable = errors.New("pipeline: store listing unavailable")

// Store is the record-store surface the pipeline depends on. Implemented
// by the store client; tests substitute a fake.
type Store interface {
	RawContentsByDistrict(ctx context.Context, district string) []string
	CountSameURL(ctx context.Context, district, itemURL string) int
	AddRaw(ctx context.Context, district, itemURL, content string, editionIndex int) *model.RawItem

	UnanalyzedRaw(ctx context.Context) []model.RawItem
	AddAnalyzed(ctx context.Context, item model.AnalyzedItem) (*model.AnalyzedItem, bool)

	UnsentAnalyzed(ctx context.Context) []model.AnalyzedItem
	MarkSent(ctx context.Context, contentHash string) *model.SentMarker

	SaveLog(ctx context.Context, level, message, functionName, errorTrace string) bool
	SaveMetrics(ctx context.Context, payload map[string]any) bool
}

// Crawler crawls one district board. Implemented by the scraper engine.
type Crawler interface {
	Descriptor() source.Descriptor
	Scrape(ctx context.Context, maxPages int) ([]model.ScrapedItem, error)
	UsedTor() bool
}

// Pipeline wires the crawlers, store, analyzer, and notifier into one run.
type Pipeline struct {
	crawlers []Crawler
	store    Store
	analyzer enrich.Analyzer
	notifier notify.Notifier
	metrics  *metrics.Collector
	logger   *slog.Logger

	maxPages    int
	concurrency int
	testMode    bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithMaxPages caps how many list pages each crawler walks. Zero means no
// cap beyond the board's own pagination.
func WithMaxPages(n int) Option {
	return func(p *Pipeline) {
		p.maxPages = n
	}
}

// WithConcurrency sets how many district crawls run at once during the
// collect phase. Values below two keep the sequential order.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.concurrency = n
	}
}

// WithTestMode marks the run as a test run in the narration. Notice
// rerouting itself is the notifier's concern.
func WithTestMode(on bool) Option {
	return func(p *Pipeline) {
		p.testMode = on
	}
}

// New creates a pipeline over the given collaborators.
func New(crawlers []Crawler, st Store, analyzer enrich.Analyzer, notifier notify.Notifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		crawlers:    crawlers,
		store:       st,
		analyzer:    analyzer,
		notifier:    notifier,
		metrics:     metrics.NewCollector(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Run executes the three phases in order. skipCollect jumps straight to
// analysis, for reruns over already-collected data. The run's metrics are
// finalized and persisted on every exit path.
func (p *Pipeline) Run(ctx context.Context, skipCollect bool) error {
	p.metrics.StartRun()
	defer p.finalize(ctx)

	p.narrate(ctx, "서버 가동 시작했습니다.")
	if p.testMode {
		p.narrate(ctx, "[TEST MODE] 모든 메시지가 일반 채널로 전송됩니다.")
	}

	if skipCollect {
		p.narrate(ctx, "RAW 수집 건너뜀 (--skip-collect)")
	} else {
		p.narrate(ctx, "START_1/3. RAW 수집 시작합니다.")
		if err := p.runPhase(ctx, metrics.PhaseCollect, p.collect); err != nil {
			return err
		}
		p.narrate(ctx, "FINISH_1/3. RAW 수집 실행을 종료했습니다.")
	}

	p.narrate(ctx, "START_2/3. RAW 분석 시작합니다.")
	if err := p.runPhase(ctx, metrics.PhaseAnalyze, p.analyze); err != nil {
		return err
	}
	p.narrate(ctx, "FINISH_2/3. RAW 분석 실행을 종료했습니다.")

	p.narrate(ctx, "START_3/3. 분석 전송 시작합니다.")
	if err := p.runPhase(ctx, metrics.PhaseSend, p.deliver); err != nil {
		return err
	}
	p.narrate(ctx, "FINISH_3/3. 분석 전송 실행을 종료했습니다.")

	p.narrate(ctx, "서버 모두 종료합니다.")
	return nil
}

// Metrics exposes the collector so callers can render the finished run.
func (p *Pipeline) Metrics() *metrics.Collector {
	return p.metrics
}

// runPhase times one phase; the timing lands even when the phase fails.
func (p *Pipeline) runPhase(ctx context.Context, name string, phase func(context.Context) error) error {
	done := p.metrics.StartPhase(name)
	defer done()
	return phase(ctx)
}

// finalize stamps the run, persists its metrics, and logs the summary.
func (p *Pipeline) finalize(ctx context.Context) {
	run := p.metrics.EndRun()
	if run == nil {
		return
	}
	p.store.SaveMetrics(ctx, metrics.Document(run))
	p.logger.Info("run finished", "summary", metrics.Summary(run))
}

// narrate sends run narration to the general channel and mirrors it into
// the store's log collection.
func (p *Pipeline) narrate(ctx context.Context, message string) {
	p.logger.Info(message)
	p.notifier.SendGeneral(ctx, message)
	p.store.SaveLog(ctx, "INFO", message, "", "")
}

// logError records a failure in the store's log collection without
// interrupting the run.
func (p *Pipeline) logError(ctx context.Context, functionName, message string, err error) {
	p.logger.Error(message, "function", functionName, "error", err)
	trace := ""
	if err != nil {
		trace = err.Error()
	}
	p.store.SaveLog(ctx, "ERROR", message, functionName, trace)
}
