package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
)

// collect crawls every district board and stores the notices not yet in
// the raw collection. District failures are isolated: each is logged,
// counted in metrics, and the remaining districts still run.
func (p *Pipeline) collect(ctx context.Context) error {
	var (
		mu    sync.Mutex
		saved = make(map[string]int, len(p.crawlers))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.concurrency, 1))

	for _, crawler := range p.crawlers {
		g.Go(func() error {
			desc := crawler.Descriptor()
			p.narrate(gctx, fmt.Sprintf("%s 시도 중", desc.Name))

			scope := p.metrics.StartSource(desc.Code)
			items, err := crawler.Scrape(gctx, p.maxPages)
			if err != nil {
				scope.Finish(false, 0, crawler.UsedTor(), err)
				p.logError(gctx, "collect."+desc.Code,
					fmt.Sprintf("수집 실패(type:%T)", err), err)
				return nil
			}

			n, err := p.saveScraped(gctx, desc.Name, items)
			if err != nil {
				scope.Finish(false, n, crawler.UsedTor(), err)
				p.logError(gctx, "collect."+desc.Code, "수집 저장 실패", err)
				return nil
			}
			scope.Finish(true, n, crawler.UsedTor(), nil)

			if n > 0 {
				mu.Lock()
				saved[desc.Name] = n
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	p.narrate(ctx, collectSummary(p.crawlers, saved))
	return nil
}

// saveScraped stores the items whose content the district has not seen
// before. The comparison key is the verbatim content string; a changed
// notice at a known URL gets a fresh row with the next edition index.
func (p *Pipeline) saveScraped(ctx context.Context, district string, items []model.ScrapedItem) (int, error) {
	existing := p.store.RawContentsByDistrict(ctx, district)
	if existing == nil {
		return 0, fmt.Errorf("%w: raw contents for %s", ErrStoreUnavailable, district)
	}
	known := make(map[string]struct{}, len(existing))
	for _, content := range existing {
		known[content] = struct{}{}
	}

	saved := 0
	for _, item := range items {
		if _, dup := known[item.Content]; dup {
			continue
		}

		editionIndex := p.store.CountSameURL(ctx, district, item.URL)
		if editionIndex < 0 {
			return saved, fmt.Errorf("%w: edition count for %s", ErrStoreUnavailable, item.URL)
		}
		if p.store.AddRaw(ctx, district, item.URL, item.Content, editionIndex) == nil {
			continue
		}
		saved++
	}
	return saved, nil
}

// collectSummary renders the per-district save counts in crawler order.
func collectSummary(crawlers []Crawler, saved map[string]int) string {
	total := 0
	parts := make([]string, 0, len(saved))
	for _, c := range crawlers {
		name := c.Descriptor().Name
		if n, ok := saved[name]; ok {
			parts = append(parts, fmt.Sprintf("%s: %d건", name, n))
			total += n
		}
	}
	if len(parts) == 0 {
		return "RAW 수집 결과: 새로 수집된 데이터 없음"
	}
	return fmt.Sprintf("RAW 수집 결과: 총 %d건 (%s)", total, strings.Join(parts, ", "))
}
