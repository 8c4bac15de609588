package core

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
	"github.com/JonMunkholm/impact-tracker/internal/source"
)

func importSheet() *source.Sheet {
	return &source.Sheet{
		Headers: []string{"Sr.No", "Date", "Sub Project", "Mystery"},
		Rows: []cleaner.RawRow{
			{"Sr.No": "1", "Date": "2024-01-15", "Sub Project": "snacks"},
			{"Sr.No": "2", "Date": "someday", "Sub Project": "snacks"},
			{"Sr.No": "3", "Date": "", "Sub Project": "snacks"},
			{"Sr.No": "4", "Date": "2024-02-01", "Sub Project": "snacks"},
		},
	}
}

func TestImport(t *testing.T) {
	store := newMemStore()
	store.upsertErr = func(rec cleaner.CanonicalRecord) error {
		if rec.SrNo.String == "4" {
			return errors.New("duplicate key")
		}
		return nil
	}
	svc := newTestService(store)

	report, err := svc.Import(context.Background(), &fakeSource{name: "excel", sheet: importSheet()}, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if report.Processed != 4 || report.Imported != 3 || report.Errors != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.UnparseableDates != 1 {
		t.Errorf("UnparseableDates = %d, want 1", report.UnparseableDates)
	}
	if rate := report.UnparseableDateRate(); rate != 25 {
		t.Errorf("UnparseableDateRate() = %v, want 25", rate)
	}
	if !reflect.DeepEqual(report.UnknownColumns, []string{"Mystery"}) {
		t.Errorf("UnknownColumns = %v", report.UnknownColumns)
	}
	if len(store.upserted) != 3 {
		t.Errorf("store has %d records, want 3", len(store.upserted))
	}
	if len(store.states) != 0 {
		t.Error("import must not move the sync position")
	}
}

func TestImport_DryRun(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	report, err := svc.Import(context.Background(), &fakeSource{name: "csv", sheet: importSheet()}, true)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if !report.DryRun || report.Processed != 4 || report.Imported != 0 {
		t.Errorf("report = %+v", report)
	}
	if len(store.upserted) != 0 {
		t.Errorf("dry run wrote %d records", len(store.upserted))
	}
}

func TestImport_FetchError(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.Import(context.Background(), &fakeSource{name: "excel", err: source.ErrSheetNotFound}, false)
	if !errors.Is(err, source.ErrSheetNotFound) {
		t.Errorf("err = %v, want ErrSheetNotFound", err)
	}
}

func TestImportReport_EmptyRate(t *testing.T) {
	if rate := (ImportReport{}).UnparseableDateRate(); rate != 0 {
		t.Errorf("rate = %v, want 0", rate)
	}
}
