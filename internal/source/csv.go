package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CSV reads a CSV export of the tracker sheet. The first record is the
// header row.
type CSV struct {
	Path string
}

// NewCSV returns a source for the CSV file at path.
func NewCSV(path string) *CSV {
	return &CSV{Path: path}
}

func (c *CSV) Name() string { return "csv" }

// Fetch reads the whole file. Blank lines and rows of empty cells are
// skipped.
func (c *CSV) Fetch(ctx context.Context) (*Sheet, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	sheet, counter, err := readCSV(ctx, f, size)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", c.Path, err)
	}

	slog.Debug("csv read",
		"path", c.Path,
		"bytes", counter.BytesRead,
		"rows", sheet.Count(),
	)
	return sheet, nil
}

func readCSV(ctx context.Context, r io.Reader, size int64) (*Sheet, *countingReader, error) {
	body, counter := wrapForStreaming(r, size)

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Sheet{}, counter, nil
	}
	if err != nil {
		return nil, counter, fmt.Errorf("header: %w", err)
	}

	var rows [][]any
	for {
		if err := ctx.Err(); err != nil {
			return nil, counter, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, counter, fmt.Errorf("row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, stringsToCells(record))
	}

	return newSheet(stringsToCells(header), rows, true), counter, nil
}
