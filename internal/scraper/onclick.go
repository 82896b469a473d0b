package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
	"github.com/moah0o0/public-funeral-scrapper/internal/source"
)

// onclickArgPattern splits the quoted, comma-separated argument list of an
// inline handler call like boardView('1','2','3','100','737','0505050000').
var onclickArgPattern = regexp.MustCompile(`'([^']*)'`)

// goPagePattern recovers page numbers from goPage(N) handler calls.
var goPagePattern = regexp.MustCompile(`goPage\((\d+)\)`)

// dataIdxPattern recovers item identifiers from data-req-get-p-idx
// attributes on the Gangseo board, which renders no hrefs at all.
var dataIdxPattern = regexp.MustCompile(`data-req-get-p-idx="(\d+)"`)

// onclickURLParser reconstructs a canonical detail path from the argument
// list of one inline handler call. Returns ok=false when the handler is not
// the expected shape.
type onclickURLParser func(args []string) (path string, ok bool)

// parseBoardView handles the 6-argument shape
// boardView('v1','v2','v3',bIdx,ptIdx,mId) used by Saha.
func parseBoardView(args []string) (string, bool) {
	if len(args) < 6 {
		return "", false
	}
	bIdx, ptIdx, mID := args[3], args[4], args[5]
	return fmt.Sprintf("/portal/bbs/view.do?mId=%s&bIdx=%s&ptIdx=%s", mID, bIdx, ptIdx), true
}

// parseGoToView handles the 4-argument shape goTo.view('',bIdx,ptIdx,mId)
// used by Yeonje.
func parseGoToView(args []string) (string, bool) {
	if len(args) < 4 {
		return "", false
	}
	bIdx, ptIdx, mID := args[1], args[2], args[3]
	return fmt.Sprintf("/portal/bbs/view.do?bIdx=%s&ptIdx=%s&mId=%s", bIdx, ptIdx, mID), true
}

// newOnclickStrategy dispatches the district-specific handler parser.
// Gangseo is special-cased: it exposes data attributes rather than
// handlers, so it gets the attribute-regex variant.
func newOnclickStrategy(d source.Descriptor) (Strategy, error) {
	switch d.Code {
	case "SAHA":
		return &onclickStrategy{d: d, handler: "boardView(", parse: parseBoardView}, nil
	case "YEONJE":
		return &onclickStrategy{d: d, handler: "goTo.view(", parse: parseGoToView}, nil
	case "GANGSEO":
		return &gangseoStrategy{d: d}, nil
	default:
		return nil, fmt.Errorf("no onclick parser for district %s", d.Code)
	}
}

// onclickStrategy extracts detail URLs from inline handler attributes on
// anchors inside the list container.
type onclickStrategy struct {
	d       source.Descriptor
	handler string
	parse   onclickURLParser
}

// ListItems reconstructs detail URLs from every anchor whose onclick calls
// the expected handler.
func (s *onclickStrategy) ListItems(html string) ([]model.ScrapedItem, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	items := make([]model.ScrapedItem, 0, 16)
	doc.Find(s.d.ListSelector).Find("a[onclick]").Each(func(_ int, a *goquery.Selection) {
		onclick, _ := a.Attr("onclick")
		path, ok := parseOnclickCall(onclick, s.handler, s.parse)
		if !ok {
			return
		}
		items = append(items, model.ScrapedItem{URL: s.d.Resolve(path)})
	})
	return items, nil
}

// LastPage reads goPage(N) from the pagination widget's handler calls,
// taking the maximum. Boards in this family paginate with script calls, so
// the href rule does not apply.
func (s *onclickStrategy) LastPage(html string) int {
	doc, err := parseDocument(html)
	if err != nil {
		return 1
	}
	widget := doc.Find(s.d.PaginationSelector)
	if widget.Length() == 0 {
		return 1
	}

	last := 1
	widget.Find("a[onclick]").Each(func(_ int, a *goquery.Selection) {
		onclick, _ := a.Attr("onclick")
		m := goPagePattern.FindStringSubmatch(onclick)
		if m == nil {
			return
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > last {
			last = n
		}
	})
	return last
}

// DetailContent extracts the notice body via the content selector.
func (s *onclickStrategy) DetailContent(_ context.Context, _, html string) (string, error) {
	return selectorContent(html, s.d.ContentSelector)
}

// parseOnclickCall checks that the handler matches and parses its quoted
// arguments.
func parseOnclickCall(onclick, handler string, parse onclickURLParser) (string, bool) {
	if onclick == "" || !strings.Contains(onclick, handler) {
		return "", false
	}
	matches := onclickArgPattern.FindAllStringSubmatch(onclick, -1)
	args := make([]string, 0, len(matches))
	for _, m := range matches {
		args = append(args, m[1])
	}
	return parse(args)
}

// gangseoStrategy handles the one board that hides item identity in
// data-req-get-p-idx attributes and paginates with bare goPage(N) calls
// scattered through inline script.
type gangseoStrategy struct {
	d source.Descriptor
}

// ListItems rebuilds detail URLs from the data attribute values.
func (s *gangseoStrategy) ListItems(html string) ([]model.ScrapedItem, error) {
	matches := dataIdxPattern.FindAllStringSubmatch(html, -1)
	items := make([]model.ScrapedItem, 0, len(matches))
	for _, m := range matches {
		items = append(items, model.ScrapedItem{
			URL: s.d.BaseURL + "/welfare/board/post/view.do?bcIdx=567&mid=0604030000&&idx=" + m[1],
		})
	}
	return items, nil
}

// LastPage takes the maximum goPage(N) over the whole payload; the calls
// appear in inline script, not inside a selectable widget.
func (s *gangseoStrategy) LastPage(html string) int {
	last := 1
	for _, m := range goPagePattern.FindAllStringSubmatch(html, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > last {
			last = n
		}
	}
	return last
}

// DetailContent extracts the notice body via the content selector.
func (s *gangseoStrategy) DetailContent(_ context.Context, _, html string) (string, error) {
	return selectorContent(html, s.d.ContentSelector)
}

// selectorContent is the shared plain detail extraction: parse, select,
// normalize.
func selectorContent(html, selector string) (string, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return "", err
	}
	container := doc.Find(selector)
	if container.Length() == 0 {
		return "", nil
	}
	return normalizeText(container.Text()), nil
}
