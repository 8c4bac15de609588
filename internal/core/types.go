package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
)

// SyncStatus is the outcome of the last sync of a source.
type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncPartial SyncStatus = "partial"
	SyncFailed  SyncStatus = "failed"
)

// Trigger values recorded on sync runs.
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

// SyncState is the persisted incremental sync position of one source.
type SyncState struct {
	Source             string             `json:"sync_source"`
	LastSyncedRowCount int                `json:"last_synced_row_count"`
	LastSyncTimestamp  pgtype.Timestamptz `json:"last_sync_timestamp"`
	LastSyncStatus     SyncStatus         `json:"last_sync_status"`
	LastSyncError      pgtype.Text        `json:"last_sync_error"`
	TotalRowsSynced    int                `json:"total_rows_synced"`
}

// SyncStats are the counters reported for one sync run.
type SyncStats struct {
	TotalRowsInSheet int `json:"totalRowsInSheet"`
	LastSyncedCount  int `json:"lastSyncedCount"`
	NewRowsFetched   int `json:"newRowsFetched"`
	RowsSynced       int `json:"rowsSynced"`
	Errors           int `json:"errors"`
}

// SyncResult is returned to callers of Service.Sync and serialized as the
// sync endpoint response.
type SyncResult struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	Stats     *SyncStats `json:"stats,omitempty"`
	Error     string     `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// SyncRun is one entry of the sync history.
type SyncRun struct {
	ID         uuid.UUID  `json:"id"`
	Source     string     `json:"sync_source"`
	Trigger    string     `json:"trigger"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Stats      SyncStats  `json:"stats"`
	Status     SyncStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
}

// Fact is one row of the canonical facts view.
type Fact struct {
	Project           pgtype.Text   `json:"project"`
	SubProject        pgtype.Text   `json:"sub_project"`
	Cause             pgtype.Text   `json:"cause"`
	Institute         pgtype.Text   `json:"institute"`
	TypeOfInstitution pgtype.Text   `json:"type_of_institution"`
	Remarks           pgtype.Text   `json:"remarks"`
	YearStart         pgtype.Int4   `json:"year_start"`
	YearEnd           pgtype.Int4   `json:"year_end"`
	YearLabel         pgtype.Text   `json:"year_label"`
	Date              pgtype.Text   `json:"date"`
	Quantity          pgtype.Float8 `json:"quantity"`
	Beneficiaries     pgtype.Float8 `json:"beneficiaries"`
	Amount            pgtype.Float8 `json:"amount"`
}

// FilterState narrows the facts used by the dashboard. Empty fields match
// everything.
type FilterState struct {
	Years      []int32 `json:"years"`
	Project    string  `json:"project,omitempty"`
	SubProject string  `json:"subProject,omitempty"`
	Institute  string  `json:"institute,omitempty"`
	Type       string  `json:"type,omitempty"`
}

// Asset is the image and description attached to a sub-project.
type Asset struct {
	SubProjectCanon string             `json:"sub_project_canon"`
	ImageURL        pgtype.Text        `json:"image_url"`
	Description     pgtype.Text        `json:"description"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

// RecordSink persists cleaned records, replacing any record with the same
// row hash.
type RecordSink interface {
	UpsertRecord(ctx context.Context, rec cleaner.CanonicalRecord) error
}

// SyncStateStore persists the incremental sync position per source.
// GetSyncState reports ok=false for a source that never synced.
type SyncStateStore interface {
	GetSyncState(ctx context.Context, source string) (state SyncState, ok bool, err error)
	SaveSyncState(ctx context.Context, state SyncState) error
}

// SyncHistoryStore records sync runs.
type SyncHistoryStore interface {
	InsertSyncRun(ctx context.Context, run SyncRun) error
	ListSyncRuns(ctx context.Context, source string, limit int) ([]SyncRun, error)
}

// FactStore queries canonical facts.
type FactStore interface {
	ListFacts(ctx context.Context, filters FilterState) ([]Fact, error)
}

// AssetStore reads and seeds the asset dimension.
type AssetStore interface {
	GetAsset(ctx context.Context, subProjectCanon string) (asset Asset, ok bool, err error)
	ListSubProjects(ctx context.Context) ([]string, error)
	InsertAssetIfMissing(ctx context.Context, asset Asset) (bool, error)
}

// Store is implemented by each backend.
type Store interface {
	RecordSink
	SyncStateStore
	SyncHistoryStore
	FactStore
	AssetStore
}
