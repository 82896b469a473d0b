package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
)

// analyze runs enrichment over every raw row with no analyzed counterpart
// and stores the structured result. Item failures are logged and skipped;
// only an unavailable work listing aborts the phase.
func (p *Pipeline) analyze(ctx context.Context) error {
	pending := p.store.UnanalyzedRaw(ctx)
	if pending == nil {
		return fmt.Errorf("%w: unanalyzed raw listing", ErrStoreUnavailable)
	}

	counts := make(map[string]int)
	order := make([]string, 0, 8)
	for i, raw := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.logger.Info("analyzing notice",
			"progress", fmt.Sprintf("%d/%d", i+1, len(pending)),
			"district", raw.District, "preview", preview(raw.Content))

		fields, err := p.analyzer.Analyze(ctx, raw)
		if err != nil {
			p.logError(ctx, "analyze",
				fmt.Sprintf("분석 실패(type:%T)", err), err)
			continue
		}

		_, ok := p.store.AddAnalyzed(ctx, model.AnalyzedItem{
			RawRef:       raw.ID,
			ContentHash:  raw.ContentHash,
			District:     raw.District,
			URL:          raw.URL,
			EditionIndex: raw.EditionIndex,
			Fields:       fields,
			AnalyzedAt:   time.Now().In(model.KST),
		})
		if !ok {
			p.logError(ctx, "analyze", "분석 결과 저장 실패", nil)
			continue
		}

		if counts[raw.District] == 0 {
			order = append(order, raw.District)
		}
		counts[raw.District]++
	}

	total := 0
	parts := make([]string, 0, len(order))
	for _, district := range order {
		parts = append(parts, fmt.Sprintf("%s: %d건", district, counts[district]))
		total += counts[district]
	}
	if len(parts) == 0 {
		p.narrate(ctx, "분석 결과: 새로 분석된 데이터 없음")
	} else {
		p.narrate(ctx, fmt.Sprintf("분석 결과: 총 %d건 (%s)", total, strings.Join(parts, ", ")))
	}

	p.metrics.AddAnalyzed(total)
	return nil
}

// preview shortens notice content for progress logging.
func preview(content string) string {
	flat := strings.ReplaceAll(content, "\n", " ")
	runes := []rune(flat)
	if len(runes) > 30 {
		return string(runes[:30]) + "..."
	}
	return flat
}
