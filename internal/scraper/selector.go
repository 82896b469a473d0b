package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
	"github.com/moah0o0/public-funeral-scrapper/internal/source"
)

// selectorStrategy is the standard family: item URLs from anchors inside a
// list container, last page from the pagination widget, content from a CSS
// selector on the detail page. Eleven of the sixteen boards use it.
type selectorStrategy struct {
	d source.Descriptor
}

// ListItems returns the detail URLs of every anchor under the list
// container.
func (s *selectorStrategy) ListItems(html string) ([]model.ScrapedItem, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	items := make([]model.ScrapedItem, 0, 16)
	doc.Find(s.d.ListSelector).Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" || href == "#" {
			return
		}
		items = append(items, model.ScrapedItem{URL: s.d.Resolve(href)})
	})
	return items, nil
}

// LastPage applies the shared anchor-href rule.
func (s *selectorStrategy) LastPage(html string) int {
	doc, err := parseDocument(html)
	if err != nil {
		return 1
	}
	return lastPageFromAnchors(doc, s.d)
}

// DetailContent extracts the notice body. Strip selectors are removed
// first (volatile cells like view counters), then either the key:value
// table reconstruction or plain text extraction runs.
func (s *selectorStrategy) DetailContent(_ context.Context, _, html string) (string, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return "", err
	}

	for _, sel := range s.d.StripSelectors {
		doc.Find(sel).Remove()
	}

	container := doc.Find(s.d.ContentSelector)
	if container.Length() == 0 {
		return "", nil
	}

	if s.d.TableKeyValue {
		return reconstructKeyValueTable(container), nil
	}
	return normalizeText(container.Text()), nil
}
