package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
	"github.com/JonMunkholm/impact-tracker/internal/logging"
	"github.com/JonMunkholm/impact-tracker/internal/source"
)

// ImportReport summarizes a full import of a source.
type ImportReport struct {
	Source           string        `json:"source"`
	Processed        int           `json:"processed"`
	Imported         int           `json:"imported"`
	Errors           int           `json:"errors"`
	UnparseableDates int           `json:"unparseable_dates"`
	UnknownColumns   []string      `json:"unknown_columns,omitempty"`
	DryRun           bool          `json:"dry_run"`
	Duration         time.Duration `json:"duration"`
}

// UnparseableDateRate is the share of processed rows whose date could not
// be parsed, in percent.
func (r ImportReport) UnparseableDateRate() float64 {
	if r.Processed == 0 {
		return 0
	}
	return float64(r.UnparseableDates) / float64(r.Processed) * 100
}

// Import cleans and upserts every row of src, ignoring the incremental sync
// position. With dryRun set rows are cleaned and counted but not written.
// Per-row failures are counted; only a failure to read src is returned.
func (s *Service) Import(ctx context.Context, src source.Source, dryRun bool) (ImportReport, error) {
	start := s.now()
	logger := logging.WithFields(ctx, "source", src.Name(), "dry_run", dryRun)

	sheet, err := src.Fetch(ctx)
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{
		Source:         src.Name(),
		UnknownColumns: cleaner.UnknownColumns(sheet.Headers),
		DryRun:         dryRun,
	}
	if len(report.UnknownColumns) > 0 {
		logger.Warn("unrecognized columns ignored", "columns", report.UnknownColumns)
	}

	for i, raw := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rec := cleaner.CleanRow(raw)
		report.Processed++
		if present(rec.Date) && !rec.DateISO.Valid {
			report.UnparseableDates++
		}

		if dryRun {
			continue
		}
		if err := s.store.UpsertRecord(ctx, rec); err != nil {
			report.Errors++
			logger.Warn("row import failed", "row", i+1, "error", err)
			continue
		}
		report.Imported++
	}

	report.Duration = s.now().Sub(start)
	logger.Info("import completed",
		"processed", report.Processed,
		"imported", report.Imported,
		"errors", report.Errors,
		"unparseable_dates", report.UnparseableDates,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}
