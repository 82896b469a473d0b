// Package notify delivers run narration and per-notice notifications to
// the subscriber channel. Two channels exist: the notice channel carries
// formatted death notices, the general channel carries pipeline narration.
// In test mode every message goes to the general channel so the notice
// channel never sees test traffic.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
)

// Notice is one formatted delivery.
type Notice struct {
	District     string
	URL          string
	EditionIndex int
	Fields       model.NoticeFields
}

// Notifier delivers messages to subscribers. SendNotice reports delivery
// confirmation; the pipeline writes a delivery marker only on true.
type Notifier interface {
	SendNotice(ctx context.Context, n Notice) bool
	SendGeneral(ctx context.Context, message string) bool
}

// FormatNotice renders the nine-field notice message. Empty fields were
// already replaced with the missing-value placeholder by the caller.
func FormatNotice(n Notice) string {
	var b strings.Builder
	if n.EditionIndex > 0 {
		fmt.Fprintf(&b, "[%s] 부고 (수정 %d차)\n", n.District, n.EditionIndex)
	} else {
		fmt.Fprintf(&b, "[%s] 부고\n", n.District)
	}
	fmt.Fprintf(&b, "이름: %s\n", n.Fields.Name)
	fmt.Fprintf(&b, "생년월일: %s\n", n.Fields.BirthDate)
	fmt.Fprintf(&b, "거주지: %s\n", n.Fields.Residence)
	fmt.Fprintf(&b, "사망일시: %s\n", n.Fields.DeathDatetime)
	fmt.Fprintf(&b, "사망장소: %s\n", n.Fields.DeathPlace)
	fmt.Fprintf(&b, "장례일정: %s\n", n.Fields.FuneralSchedule)
	fmt.Fprintf(&b, "장례장소: %s\n", n.Fields.FuneralPlace)
	fmt.Fprintf(&b, "발인일시: %s\n", n.Fields.DepartureDatetime)
	fmt.Fprintf(&b, "화장일시: %s\n", n.Fields.CremationDatetime)
	fmt.Fprintf(&b, "원문: %s", n.URL)
	return b.String()
}
