package scraper

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// brTagPattern matches every serialization of <br> seen across the boards
// (<br>, <br/>, <br />, any case). They are rewritten to newlines before
// parsing so line structure survives text extraction.
var brTagPattern = regexp.MustCompile(`(?i)<br\s*/?>`)

// tagPattern strips remaining markup during regex-based extraction.
var tagPattern = regexp.MustCompile(`<[^>]+>`)

// brToNewline rewrites <br> variants in raw HTML to newline characters.
func brToNewline(html string) string {
	return brTagPattern.ReplaceAllString(html, "\n")
}

// normalizeText canonicalizes extracted notice text: NFC normalization,
// non-breaking spaces to plain spaces, per-line trimming, and blank-line
// removal. The result feeds content-string dedup and the content hash, so
// this function must stay deterministic.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")

	lines := make([]string, 0, strings.Count(s, "\n")+1)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// stripTags removes markup from an HTML fragment, replacing each tag with a
// newline, and normalizes the result. Used by the regex-based extraction
// paths that never build a full document.
func stripTags(fragment string) string {
	text := tagPattern.ReplaceAllString(fragment, "\n")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	return normalizeText(text)
}
