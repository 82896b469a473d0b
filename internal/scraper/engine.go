package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/moah0o0/public-funeral-scrapper/internal/fetch"
	"github.com/moah0o0/public-funeral-scrapper/internal/model"
	"github.com/moah0o0/public-funeral-scrapper/internal/source"
)

// Engine drives pagination and item retrieval for one district using its
// descriptor and strategy. One engine serves one Scrape call chain; it is
// not safe for concurrent use (per-run Tor-usage tracking is unguarded).
type Engine struct {
	desc     source.Descriptor
	strategy Strategy
	fetcher  Fetcher
	delay    time.Duration
	logger   *slog.Logger

	// usedTor records whether any fetch in the last Scrape went via Tor,
	// for per-source metrics.
	usedTor bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDelay sets a politeness delay between detail fetches.
func WithDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.delay = d
	}
}

// WithEngineLogger sets the structured logger.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine for the descriptor. rec may be a disabled
// recognizer; only the image-fallback district ever calls it.
func New(desc source.Descriptor, fetcher Fetcher, rec Recognizer, opts ...EngineOption) (*Engine, error) {
	strategy, err := newStrategy(desc, fetcher, rec)
	if err != nil {
		return nil, fmt.Errorf("district %s: %w", desc.Code, err)
	}

	e := &Engine{
		desc:     desc,
		strategy: strategy,
		fetcher:  fetcher,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// UsedTor reports whether any fetch of the last Scrape went through Tor.
func (e *Engine) UsedTor() bool {
	return e.usedTor
}

// Descriptor returns the district descriptor this engine crawls.
func (e *Engine) Descriptor() source.Descriptor {
	return e.desc
}

// Scrape enumerates list pages 1..min(lastPage, maxPages), fetches each new
// item, and returns the extracted (url, content) pairs. Item URLs are
// deduplicated within the call. Page and item failures are logged with the
// district identity and skipped; only a failure to fetch the first list
// page aborts, because without it there is no pagination bound.
func (e *Engine) Scrape(ctx context.Context, maxPages int) ([]model.ScrapedItem, error) {
	e.usedTor = false

	firstPage, err := e.fetchList(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("district %s: fetch list page 1: %w", e.desc.Code, err)
	}

	lastPage := e.strategy.LastPage(firstPage)
	if maxPages > 0 && lastPage > maxPages {
		lastPage = maxPages
	}
	e.logger.Debug("pagination bound derived",
		"district", e.desc.Code, "last_page", lastPage)

	seen := make(map[string]bool)
	items := make([]model.ScrapedItem, 0, 32)

	for page := 1; page <= lastPage; page++ {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		listHTML := firstPage
		if page > 1 {
			listHTML, err = e.fetchList(ctx, page)
			if err != nil {
				e.logger.Warn("list page fetch failed, skipping page",
					"district", e.desc.Code, "page", page, "error", err)
				continue
			}
		}

		pageItems, err := e.strategy.ListItems(listHTML)
		if err != nil {
			e.logger.Warn("list page parse failed, skipping page",
				"district", e.desc.Code, "page", page, "error", err)
			continue
		}

		for _, item := range pageItems {
			if seen[item.URL] {
				continue
			}
			seen[item.URL] = true

			got, err := e.scrapeItem(ctx, item)
			if err != nil {
				e.logger.Warn("item scrape failed, skipping item",
					"district", e.desc.Code, "url", item.URL,
					"error", err, "error_kind", fmt.Sprintf("%T", err))
				continue
			}
			if got.Content == "" {
				continue
			}
			items = append(items, got)
		}
	}

	return items, nil
}

// scrapeItem produces the final item: inline content passes through,
// otherwise the detail page is fetched and handed to the strategy.
func (e *Engine) scrapeItem(ctx context.Context, item model.ScrapedItem) (model.ScrapedItem, error) {
	if item.Content != "" {
		return item, nil
	}

	if e.delay > 0 {
		select {
		case <-ctx.Done():
			return model.ScrapedItem{}, ctx.Err()
		case <-time.After(e.delay):
		}
	}

	res, err := e.fetcher.Fetch(ctx, item.URL, http.MethodGet, nil, e.desc.ForceTor)
	if err != nil {
		return model.ScrapedItem{}, err
	}
	e.noteTor(res)

	content, err := e.strategy.DetailContent(ctx, item.URL, res.Text())
	if err != nil {
		return model.ScrapedItem{}, err
	}
	return model.ScrapedItem{URL: item.URL, Content: content}, nil
}

// fetchList retrieves one list page honoring the descriptor's retrieval
// mode and ForceTor hint.
func (e *Engine) fetchList(ctx context.Context, page int) (string, error) {
	var (
		res *fetch.Result
		err error
	)
	if e.desc.UsePost {
		res, err = e.fetcher.Fetch(ctx, e.desc.ListURL(page), http.MethodPost, e.desc.ListForm(page), e.desc.ForceTor)
	} else {
		res, err = e.fetcher.Fetch(ctx, e.desc.ListURL(page), http.MethodGet, nil, e.desc.ForceTor)
	}
	if err != nil {
		return "", err
	}
	e.noteTor(res)
	return res.Text(), nil
}

func (e *Engine) noteTor(res *fetch.Result) {
	if res != nil && res.ViaTor {
		e.usedTor = true
	}
}
