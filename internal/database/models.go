package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type SyncMetadatum struct {
	SyncSource         string
	LastSyncedRowCount int32
	LastSyncTimestamp  pgtype.Timestamptz
	LastSyncStatus     pgtype.Text
	LastSyncError      pgtype.Text
	TotalRowsSynced    int32
	UpdatedAt          pgtype.Timestamptz
}

type SyncRun struct {
	ID               pgtype.UUID
	SyncSource       string
	Trigger          string
	StartedAt        pgtype.Timestamptz
	FinishedAt       pgtype.Timestamptz
	TotalRowsInSheet int32
	LastSyncedCount  int32
	NewRowsFetched   int32
	RowsSynced       int32
	Errors           int32
	Status           string
	Error            pgtype.Text
}

type DimAsset struct {
	ID              int64
	SubProjectCanon string
	ImageUrl        pgtype.Text
	Description     pgtype.Text
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

// FactsClean is a row of the facts_clean view.
type FactsClean struct {
	ID                int64
	Project           pgtype.Text
	SubProject        pgtype.Text
	Cause             pgtype.Text
	Institute         pgtype.Text
	TypeOfInstitution pgtype.Text
	Remarks           pgtype.Text
	YearStart         pgtype.Int4
	YearEnd           pgtype.Int4
	YearLabel         pgtype.Text
	Date              pgtype.Date
	Quantity          pgtype.Float8
	Beneficiaries     pgtype.Float8
	Amount            pgtype.Float8
}
