package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/moah0o0/public-funeral-scrapper/internal/notify"
)

// deliver sends every analyzed row with no delivery marker and records a
// marker for each confirmed send. An unconfirmed send leaves no marker, so
// the notice is retried next run; delivery is at-least-once by
// construction.
func (p *Pipeline) deliver(ctx context.Context) error {
	pending := p.store.UnsentAnalyzed(ctx)
	if pending == nil {
		return fmt.Errorf("%w: unsent analyzed listing", ErrStoreUnavailable)
	}

	counts := make(map[string]int)
	order := make([]string, 0, 8)
	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		sent := p.notifier.SendNotice(ctx, notify.Notice{
			District:     item.District,
			URL:          item.URL,
			EditionIndex: item.EditionIndex,
			Fields:       item.Fields.Normalized(),
		})
		if !sent {
			p.logError(ctx, "deliver", "전송 실패", nil)
			continue
		}

		// Marker write failure is deliberate non-fatal: the notice was
		// delivered, and the missing marker only means one redelivery.
		if p.store.MarkSent(ctx, item.ContentHash) == nil {
			p.logError(ctx, "deliver", "전송 기록 저장 실패", nil)
		}

		if counts[item.District] == 0 {
			order = append(order, item.District)
		}
		counts[item.District]++
	}

	total := 0
	parts := make([]string, 0, len(order))
	for _, district := range order {
		parts = append(parts, fmt.Sprintf("%s: %d건", district, counts[district]))
		total += counts[district]
	}
	if len(parts) == 0 {
		p.narrate(ctx, "전송 결과: 새로 전송된 데이터 없음")
	} else {
		p.narrate(ctx, fmt.Sprintf("전송 결과: 총 %d건 (%s)", total, strings.Join(parts, ", ")))
	}

	p.metrics.AddSent(total)
	return nil
}
