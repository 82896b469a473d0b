package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// reconstructKeyValueTable turns a 2- or 4-row key/value form table into
// "key:value" lines. The boards render the notice form either as two rows
// (keys, values) or as four rows where one key/value pair overflowed and
// the remaining cells span two rows.
//
// For exactly 4 rows: the positions in row 1 whose cells lack a rowspan
// attribute mark where the overflow pair belongs. When exactly one such
// position exists, the single cells from rows 2 and 4 are re-inserted
// there, collapsing the table to two logical rows. Any other row count, or
// an ambiguous merge, falls back to flat text extraction of the container.
func reconstructKeyValueTable(container *goquery.Selection) string {
	tables := container.Find("table")
	if tables.Length() == 0 {
		return normalizeText(container.Text())
	}

	// The notice form is always the last table; earlier ones are layout.
	table := tables.Eq(tables.Length() - 1)

	var rows [][]*goquery.Selection
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []*goquery.Selection
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, td)
		})
		rows = append(rows, cells)
	})

	if len(rows) != 2 && len(rows) != 4 {
		return normalizeText(container.Text())
	}

	if len(rows) == 4 {
		merged, ok := mergeSpannedRows(rows)
		if !ok {
			return normalizeText(container.Text())
		}
		rows = merged
	}

	keys, values := rows[0], rows[1]
	var b strings.Builder
	for i, keyCell := range keys {
		key := strings.TrimSpace(keyCell.Text())
		value := ""
		if i < len(values) {
			value = strings.TrimSpace(values[i].Text())
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(key)
		b.WriteString(":")
		b.WriteString(value)
	}
	return normalizeText(b.String())
}

// mergeSpannedRows collapses a 4-row spanned table to 2 logical rows.
// Reports false when the merge position is not unambiguous.
func mergeSpannedRows(rows [][]*goquery.Selection) ([][]*goquery.Selection, bool) {
	if len(rows) != 4 || len(rows[1]) == 0 || len(rows[3]) == 0 {
		return nil, false
	}

	// Find positions in row 1 without a rowspan attribute.
	var plain []int
	for i, cell := range rows[0] {
		if _, ok := cell.Attr("rowspan"); !ok {
			plain = append(plain, i)
		}
	}
	if len(plain) != 1 {
		return nil, false
	}
	idx := plain[0]

	keys := insertCell(rows[0], idx, rows[1][0])
	values := insertCell(rows[2], idx, rows[3][0])
	return [][]*goquery.Selection{keys, values}, true
}

// insertCell returns row with cell inserted at position idx.
func insertCell(row []*goquery.Selection, idx int, cell *goquery.Selection) []*goquery.Selection {
	if idx > len(row) {
		idx = len(row)
	}
	out := make([]*goquery.Selection, 0, len(row)+1)
	out = append(out, row[:idx]...)
	out = append(out, cell)
	out = append(out, row[idx:]...)
	return out
}
