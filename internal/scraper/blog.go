package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
	"github.com/moah0o0/public-funeral-scrapper/internal/source"
)

// blogStrategy covers the blog-layout board where each list entry already
// contains the full notice text in a designated text-class sub-element.
// There is no detail fetch: ListItems yields items with Content set.
type blogStrategy struct {
	d source.Descriptor
}

// ListItems walks the list entries, pairing each entry's anchor (identity)
// with its inline text block (content). Entries without text are skipped;
// the board intermixes decorative entries.
func (s *blogStrategy) ListItems(html string) ([]model.ScrapedItem, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	items := make([]model.ScrapedItem, 0, 16)
	doc.Find(s.d.ListSelector).Find("li").Each(func(_ int, entry *goquery.Selection) {
		href, ok := entry.Find("a[href]").First().Attr("href")
		if !ok || href == "" || href == "#" {
			return
		}
		content := normalizeText(entry.Find("." + s.d.ContentClass).Text())
		if content == "" {
			return
		}
		items = append(items, model.ScrapedItem{
			URL:     s.d.Resolve(href),
			Content: content,
		})
	})
	return items, nil
}

// LastPage applies the shared anchor-href rule.
func (s *blogStrategy) LastPage(html string) int {
	doc, err := parseDocument(html)
	if err != nil {
		return 1
	}
	return lastPageFromAnchors(doc, s.d)
}

// DetailContent is never reached for this family; items carry their
// content from the list page.
func (s *blogStrategy) DetailContent(_ context.Context, _, _ string) (string, error) {
	return "", nil
}
