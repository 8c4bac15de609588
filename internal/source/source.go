// Package source reads tracker rows from spreadsheets.
//
// A Source returns the whole sheet on every Fetch. Incremental sync is done
// by the caller using the row count, so sources stay stateless.
package source

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
)

// ErrSheetNotFound is returned when a workbook has no sheet with the
// requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// Source is a spreadsheet that can be read in full.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*Sheet, error)
}

// Sheet is a fetched spreadsheet. Rows exclude the header row and are in
// sheet order.
type Sheet struct {
	Headers []string
	Rows    []cleaner.RawRow
}

// Count returns the number of data rows.
func (s *Sheet) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Since returns the rows after the first n. Rows are assumed to be
// append-only, so these are the rows added since a sync that saw n.
func (s *Sheet) Since(n int) []cleaner.RawRow {
	if s == nil || n >= len(s.Rows) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	return s.Rows[n:]
}

// NormalizeHeader cleans a header cell: NFC form, line breaks become
// spaces, whitespace runs collapse, ends are trimmed.
func NormalizeHeader(h string) string {
	return strings.Join(strings.FieldsFunc(norm.NFC.String(h), func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	}), " ")
}

// newSheet keys each row by its normalized header. Empty strings become nil
// and cells under a blank header are dropped. With skipBlank set, rows with
// no values at all are left out.
func newSheet(headerRow []any, rows [][]any, skipBlank bool) *Sheet {
	headers := make([]string, len(headerRow))
	for i, h := range headerRow {
		if s, ok := h.(string); ok {
			headers[i] = NormalizeHeader(s)
		}
	}

	sheet := &Sheet{Headers: headers, Rows: make([]cleaner.RawRow, 0, len(rows))}
	for _, cells := range rows {
		row := make(cleaner.RawRow, len(headers))
		empty := true
		for i, h := range headers {
			if h == "" {
				continue
			}
			var v any
			if i < len(cells) {
				v = cells[i]
			}
			if s, ok := v.(string); ok && s == "" {
				v = nil
			}
			if v != nil {
				empty = false
			}
			row[h] = v
		}
		if skipBlank && empty {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

func stringsToCells(row []string) []any {
	cells := make([]any, len(row))
	for i, s := range row {
		cells[i] = s
	}
	return cells
}
