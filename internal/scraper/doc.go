// Package scraper implements the per-district extraction strategies and the
// crawl engine that drives them.
//
// Four strategy families cover the 16 district boards: CSS-selector
// extraction, onclick-handler reconstruction, inline blog-style lists, and
// a text-then-OCR fallback chain for the one district that posts notices as
// images. The engine is family-agnostic: it paginates, deduplicates item
// URLs, and yields (url, content) pairs, skipping individual failures
// without aborting the page loop.
package scraper
