package source

import (
	"fmt"
	"net/url"
	"strings"
)

// ExtractionMode selects which strategy family interprets a source's pages.
type ExtractionMode int

const (
	// ModeSelector extracts item URLs and content via CSS selectors.
	ModeSelector ExtractionMode = iota

	// ModeOnclick reconstructs detail URLs from inline onclick handler
	// arguments; the per-district parser is dispatched by descriptor code.
	ModeOnclick

	// ModeBlog reads notice content directly from the list page; there is
	// no detail fetch.
	ModeBlog

	// ModeImageFallback tries direct text extraction first and falls back
	// to downloading an attached image and running table-aware OCR.
	ModeImageFallback
)

// String returns the mode name for logging.
func (m ExtractionMode) String() string {
	switch m {
	case ModeSelector:
		return "selector"
	case ModeOnclick:
		return "onclick"
	case ModeBlog:
		return "blog"
	case ModeImageFallback:
		return "image-fallback"
	default:
		return "unknown"
	}
}

// Descriptor is the immutable per-district endpoint and extraction
// configuration. One descriptor exists per district, built from the static
// table in districts.go.
type Descriptor struct {
	// Code is the stable ASCII identifier (e.g. "BUKGU") used in logs and
	// metrics.
	Code string

	// Name is the Korean display name (e.g. "북구") persisted with records.
	Name string

	// BaseURL is the scheme+host prefix for resolving item paths.
	BaseURL string

	// ListURLFormat is the list page URL. For GET sources it contains one
	// %d verb for the page number; for POST sources it is the fixed
	// endpoint and the page number travels in PostForm.
	ListURLFormat string

	// UsePost indicates the list page is retrieved with a form POST
	// instead of GET.
	UsePost bool

	// PostForm holds the static form fields for POST list retrieval.
	// The page number is added under the "page" key at request time.
	PostForm map[string]string

	// Mode selects the extraction strategy family.
	Mode ExtractionMode

	// ListSelector locates the container holding item links on list pages.
	ListSelector string

	// ContentSelector locates the notice body on detail pages. For
	// ModeImageFallback it locates the attachment download link instead.
	ContentSelector string

	// PaginationSelector locates the pagination widget on list pages.
	PaginationSelector string

	// ContentClass is the class of the list sub-element holding notice
	// text for ModeBlog sources.
	ContentClass string

	// StripSelectors are elements removed from the detail page before text
	// extraction (e.g. a view-count cell embedded in the content table).
	StripSelectors []string

	// TableKeyValue enables key:value table reconstruction on the detail
	// page (row-span merge of 2- or 4-row form tables).
	TableKeyValue bool

	// PageParamPattern is the regex (one capture group) recovering page
	// numbers from pagination hrefs. Empty means the default startPage
	// pattern.
	PageParamPattern string

	// ForceTor requests Tor retrieval from the first attempt for sources
	// that block datacenter or repeated-crawler traffic. Sources without
	// the hint still get Tor as a retry fallback inside the fetcher.
	ForceTor bool
}

// ListURL returns the list page URL for the given 1-based page number.
// For POST sources the URL is fixed and the page number is carried in the
// form body instead.
func (d Descriptor) ListURL(page int) string {
	if d.UsePost || !strings.Contains(d.ListURLFormat, "%d") {
		return d.ListURLFormat
	}
	return fmt.Sprintf(d.ListURLFormat, page)
}

// ListForm returns the form body for POST list retrieval, with the page
// number filled in. Returns nil for GET sources.
func (d Descriptor) ListForm(page int) url.Values {
	if !d.UsePost {
		return nil
	}
	form := url.Values{}
	for k, v := range d.PostForm {
		form.Set(k, v)
	}
	form.Set("page", fmt.Sprintf("%d", page))
	return form
}

// Resolve joins a possibly relative item path with the descriptor's base URL.
func (d Descriptor) Resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return d.BaseURL + path
}
