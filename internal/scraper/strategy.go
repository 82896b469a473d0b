package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/moah0o0/public-funeral-scrapper/internal/fetch"
	"github.com/moah0o0/public-funeral-scrapper/internal/model"
	"github.com/moah0o0/public-funeral-scrapper/internal/ocr"
	"github.com/moah0o0/public-funeral-scrapper/internal/source"
)

// Fetcher retrieves pages for the engine and for strategies that need
// secondary downloads (attachment images). Implemented by fetch.Client.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL, method string, form url.Values, forceTor bool) (*fetch.Result, error)
}

// Recognizer is the OCR collaborator used by the image-fallback strategy.
// A disabled recognizer (missing credentials) is valid; the strategy then
// skips the OCR branch.
type Recognizer interface {
	Enabled() bool
	Recognize(ctx context.Context, image []byte) (*ocr.Document, error)
}

// Strategy is the extraction capability set behind which all 16 district
// front-ends are normalized: item discovery and pagination bounds from a
// list payload, and normalized text from a detail payload.
type Strategy interface {
	// ListItems parses a list-page payload into items. For blog-style
	// sources the returned items carry Content directly and no detail
	// fetch happens.
	ListItems(html string) ([]model.ScrapedItem, error)

	// LastPage derives the last page number from a list-page payload.
	// Always at least 1; parse failures degrade to 1, never error.
	LastPage(html string) int

	// DetailContent extracts normalized notice text from a detail payload.
	// pageURL is the detail page's own URL; ctx covers any secondary
	// retrieval the strategy performs (attachment downloads, OCR).
	// An empty result with nil error means "nothing here, skip quietly".
	DetailContent(ctx context.Context, pageURL, html string) (string, error)
}

// newStrategy builds the strategy for a descriptor, dispatching on its
// extraction mode and district code.
func newStrategy(d source.Descriptor, fetcher Fetcher, rec Recognizer) (Strategy, error) {
	switch d.Mode {
	case source.ModeSelector:
		return &selectorStrategy{d: d}, nil
	case source.ModeBlog:
		return &blogStrategy{d: d}, nil
	case source.ModeImageFallback:
		return &imageFallbackStrategy{d: d, fetcher: fetcher, ocr: rec}, nil
	case source.ModeOnclick:
		return newOnclickStrategy(d)
	default:
		return nil, fmt.Errorf("no strategy for extraction mode %s", d.Mode)
	}
}

// defaultPageParamPattern recovers page numbers from pagination hrefs on
// the standard board engines.
var defaultPageParamPattern = regexp.MustCompile(`startPage=([0-9]{1,5})`)

// lastPageFromAnchors implements the shared pagination-termination rule:
// collect every href inside the pagination widget, pull page numbers out
// with the descriptor's page-parameter regex, and take the maximum. A
// widget whose whole text is "1", or that yields no matches, means a
// single page.
func lastPageFromAnchors(doc *goquery.Document, d source.Descriptor) int {
	widget := doc.Find(d.PaginationSelector)
	if widget.Length() == 0 {
		return 1
	}
	if strings.TrimSpace(widget.Text()) == "1" {
		return 1
	}

	pattern := defaultPageParamPattern
	if d.PageParamPattern != "" {
		compiled, err := regexp.Compile(d.PageParamPattern)
		if err == nil {
			pattern = compiled
		}
	}

	last := 1
	widget.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := pattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > last {
			last = n
		}
	})
	return last
}

// parseDocument wraps goquery parsing with br-tag normalization applied
// first, so extracted text keeps its line breaks.
func parseDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(brToNewline(html)))
}
