package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const defaultExcelSheet = "tracker"

// Excel reads the tracker sheet of an .xlsx workbook.
//
// Cells are read as displayed, except RawColumns, whose numeric values are
// passed through as float64 so date serials survive custom formats.
type Excel struct {
	Path       string
	SheetName  string   // matched case-insensitively; default "tracker"
	RawColumns []string // default ["Date"]
}

// NewExcel returns a source for the workbook at path. An empty sheet name
// selects the "Tracker" sheet.
func NewExcel(path, sheetName string) *Excel {
	return &Excel{
		Path:       path,
		SheetName:  sheetName,
		RawColumns: []string{"Date"},
	}
}

func (e *Excel) Name() string { return "excel" }

func (e *Excel) Fetch(ctx context.Context) (*Sheet, error) {
	f, err := excelize.OpenFile(e.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(ctx, f, e.SheetName, e.RawColumns)
}

func readWorkbook(ctx context.Context, f *excelize.File, want string, rawColumns []string) (*Sheet, error) {
	name, err := findSheet(f.GetSheetList(), want)
	if err != nil {
		return nil, err
	}

	display, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(display) == 0 {
		return &Sheet{}, nil
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q raw values: %w", name, err)
	}

	header := stringsToCells(display[0])
	rawIdx := rawColumnIndexes(display[0], rawColumns)

	rows := make([][]any, 0, len(display)-1)
	for i := 1; i < len(display); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cells := stringsToCells(display[i])
		for _, col := range rawIdx {
			if col >= len(cells) || i >= len(raw) || col >= len(raw[i]) {
				continue
			}
			if n, err := strconv.ParseFloat(raw[i][col], 64); err == nil {
				cells[col] = n
			}
		}
		rows = append(rows, cells)
	}

	return newSheet(header, rows, true), nil
}

func findSheet(sheets []string, want string) (string, error) {
	if want == "" {
		want = defaultExcelSheet
	}
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(want)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, want, strings.Join(sheets, ", "))
}

func rawColumnIndexes(header []string, rawColumns []string) []int {
	var idx []int
	for i, h := range header {
		h = NormalizeHeader(h)
		for _, c := range rawColumns {
			if h == c {
				idx = append(idx, i)
			}
		}
	}
	return idx
}
