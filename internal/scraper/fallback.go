package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
	"github.com/moah0o0/public-funeral-scrapper/internal/ocr"
	"github.com/moah0o0/public-funeral-scrapper/internal/source"
)

// minDirectTextLength is the threshold below which direct text extraction
// is considered empty and the image/OCR branch runs. Short fragments are
// boilerplate ("첨부파일 참조"), not notices.
const minDirectTextLength = 20

// substancePattern extracts the notice text block when the board inlines
// it. The block is a flat div; regex extraction beats full parsing here
// because the surrounding markup is badly nested.
var substancePattern = regexp.MustCompile(`(?s)<div class="substanceautolink">(.*?)</div>`)

// imageFallbackStrategy covers the board that publishes most notices as
// attached images. Chain: direct text block; below threshold, download the
// attachment image and run table-aware OCR; an image with no detected
// table yields empty content, which the engine skips without error.
type imageFallbackStrategy struct {
	d       source.Descriptor
	fetcher Fetcher
	ocr     Recognizer
}

// ListItems resolves item hrefs against the board's list endpoint; hrefs
// here are bare query strings.
func (s *imageFallbackStrategy) ListItems(html string) ([]model.ScrapedItem, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	endpoint := listEndpoint(s.d.ListURLFormat)
	items := make([]model.ScrapedItem, 0, 16)
	doc.Find(s.d.ListSelector).Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" || href == "#" {
			return
		}
		items = append(items, model.ScrapedItem{URL: endpoint + href})
	})
	return items, nil
}

// LastPage applies the shared anchor-href rule with the board's cpage
// parameter pattern.
func (s *imageFallbackStrategy) LastPage(html string) int {
	doc, err := parseDocument(html)
	if err != nil {
		return 1
	}
	return lastPageFromAnchors(doc, s.d)
}

// DetailContent runs the fallback chain.
func (s *imageFallbackStrategy) DetailContent(ctx context.Context, pageURL, html string) (string, error) {
	// Branch 1: inline text block.
	if m := substancePattern.FindStringSubmatch(html); m != nil {
		text := stripTags(brToNewline(m[1]))
		if utf8.RuneCountInString(text) > minDirectTextLength {
			return text, nil
		}
	}

	// Branch 2: attachment image through OCR.
	if s.ocr == nil || !s.ocr.Enabled() {
		slog.Warn("ocr unavailable, skipping image-only notice",
			"district", s.d.Code, "url", pageURL)
		return "", nil
	}

	doc, err := parseDocument(html)
	if err != nil {
		return "", err
	}
	href, ok := doc.Find(s.d.ContentSelector).First().Attr("href")
	if !ok || href == "" {
		return "", nil
	}

	res, err := s.fetcher.Fetch(ctx, s.d.Resolve(href), http.MethodGet, nil, s.d.ForceTor)
	if err != nil {
		return "", fmt.Errorf("download attachment image: %w", err)
	}

	recognized, err := s.ocr.Recognize(ctx, res.Body)
	if err != nil {
		if errors.Is(err, ocr.ErrDisabled) {
			return "", nil
		}
		return "", fmt.Errorf("recognize attachment image: %w", err)
	}

	return tableText(recognized), nil
}

// tableText rebuilds notice text from the first recognized table: words of
// a cell line joined by spaces, one line per cell line. No table means no
// text.
func tableText(doc *ocr.Document) string {
	if doc == nil || len(doc.Tables) == 0 {
		return ""
	}

	var b strings.Builder
	for _, cell := range doc.Tables[0].Cells {
		for _, line := range cell.TextLines {
			words := make([]string, 0, len(line.Words))
			for _, w := range line.Words {
				words = append(words, w.Text)
			}
			if len(words) == 0 {
				continue
			}
			b.WriteString(strings.Join(words, " "))
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// listEndpoint strips the query portion of the list URL format, leaving
// the endpoint that item hrefs are appended to.
func listEndpoint(format string) string {
	if i := strings.IndexByte(format, '?'); i >= 0 {
		return format[:i]
	}
	return format
}
