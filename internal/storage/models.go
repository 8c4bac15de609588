package storage

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
)

// Collection names.
const (
	TrackerCollection   = "tracker_raw"
	SyncStateCollection = "sync_metadata"
	SyncRunsCollection  = "sync_runs"
	AssetsCollection    = "dim_assets"
)

// TrackerDoc is a cleaned tracker row. NULL values are stored as null.
type TrackerDoc struct {
	SrNo              *string `bson:"sr_no"`
	Year              *string `bson:"year"`
	Month             *string `bson:"month"`
	Date              *string `bson:"date"`
	Cause             *string `bson:"cause"`
	Project           *string `bson:"project"`
	SubProject        *string `bson:"sub_project"`
	Institute         *string `bson:"institute"`
	Department        *string `bson:"department"`
	TypeOfInstitution *string `bson:"type_of_institution"`
	Quantity          *string `bson:"quantity"`
	NoOfBeneficiaries *string `bson:"no_of_beneficiaries"`
	Remarks           *string `bson:"remarks"`
	Amount            *string `bson:"amount"`
	Comments          *string `bson:"comments"`
	OnAccountKind     *string `bson:"on_account_kind"`

	MonthCanon             *string `bson:"month_canon"`
	CauseCanon             *string `bson:"cause_canon"`
	ProjectCanon           *string `bson:"project_canon"`
	SubProjectCanon        *string `bson:"sub_project_canon"`
	InstituteCanon         *string `bson:"institute_canon"`
	DepartmentCanon        *string `bson:"department_canon"`
	TypeOfInstitutionCanon *string `bson:"type_of_institution_canon"`
	RemarksCanon           *string `bson:"remarks_canon"`

	YearStart            *int32   `bson:"year_start"`
	YearEnd              *int32   `bson:"year_end"`
	YearLabel            *string  `bson:"year_label"`
	DateISO              *string  `bson:"date_iso"`
	QuantityNum          *float64 `bson:"quantity_num"`
	NoOfBeneficiariesNum *float64 `bson:"no_of_beneficiaries_num"`
	AmountNum            *float64 `bson:"amount_num"`

	RowHash   string    `bson:"row_hash"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// FactDoc reads the canonical columns of a tracker document, the same
// shape the facts_clean view exposes in Postgres.
type FactDoc struct {
	Project           *string  `bson:"project_canon"`
	SubProject        *string  `bson:"sub_project_canon"`
	Cause             *string  `bson:"cause_canon"`
	Institute         *string  `bson:"institute_canon"`
	TypeOfInstitution *string  `bson:"type_of_institution_canon"`
	Remarks           *string  `bson:"remarks_canon"`
	YearStart         *int32   `bson:"year_start"`
	YearEnd           *int32   `bson:"year_end"`
	YearLabel         *string  `bson:"year_label"`
	Date              *string  `bson:"date_iso"`
	Quantity          *float64 `bson:"quantity_num"`
	Beneficiaries     *float64 `bson:"no_of_beneficiaries_num"`
	Amount            *float64 `bson:"amount_num"`
}

// FactQuery narrows ListFacts. Zero values match everything.
type FactQuery struct {
	Years             []int32
	Project           string
	SubProject        string
	Institute         string
	TypeOfInstitution string
}

type SyncStateDoc struct {
	SyncSource         string    `bson:"sync_source"`
	LastSyncedRowCount int       `bson:"last_synced_row_count"`
	LastSyncTimestamp  time.Time `bson:"last_sync_timestamp"`
	LastSyncStatus     string    `bson:"last_sync_status"`
	LastSyncError      string    `bson:"last_sync_error,omitempty"`
	TotalRowsSynced    int       `bson:"total_rows_synced"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

type SyncRunDoc struct {
	ID               string    `bson:"_id"`
	SyncSource       string    `bson:"sync_source"`
	Trigger          string    `bson:"trigger"`
	StartedAt        time.Time `bson:"started_at"`
	FinishedAt       time.Time `bson:"finished_at"`
	TotalRowsInSheet int       `bson:"total_rows_in_sheet"`
	LastSyncedCount  int       `bson:"last_synced_count"`
	NewRowsFetched   int       `bson:"new_rows_fetched"`
	RowsSynced       int       `bson:"rows_synced"`
	Errors           int       `bson:"errors"`
	Status           string    `bson:"status"`
	Error            string    `bson:"error,omitempty"`
}

type AssetDoc struct {
	SubProjectCanon string    `bson:"sub_project_canon"`
	ImageURL        *string   `bson:"image_url"`
	Description     *string   `bson:"description"`
	CreatedAt       time.Time `bson:"created_at"`
}

// NewTrackerDoc converts a cleaned record to its stored form.
func NewTrackerDoc(rec cleaner.CanonicalRecord) TrackerDoc {
	return TrackerDoc{
		SrNo:              textPtr(rec.SrNo),
		Year:              textPtr(rec.Year),
		Month:             textPtr(rec.Month),
		Date:              textPtr(rec.Date),
		Cause:             textPtr(rec.Cause),
		Project:           textPtr(rec.Project),
		SubProject:        textPtr(rec.SubProject),
		Institute:         textPtr(rec.Institute),
		Department:        textPtr(rec.Department),
		TypeOfInstitution: textPtr(rec.TypeOfInstitution),
		Quantity:          textPtr(rec.Quantity),
		NoOfBeneficiaries: textPtr(rec.NoOfBeneficiaries),
		Remarks:           textPtr(rec.Remarks),
		Amount:            textPtr(rec.Amount),
		Comments:          textPtr(rec.Comments),
		OnAccountKind:     textPtr(rec.OnAccountKind),

		MonthCanon:             textPtr(rec.MonthCanon),
		CauseCanon:             textPtr(rec.CauseCanon),
		ProjectCanon:           textPtr(rec.ProjectCanon),
		SubProjectCanon:        textPtr(rec.SubProjectCanon),
		InstituteCanon:         textPtr(rec.InstituteCanon),
		DepartmentCanon:        textPtr(rec.DepartmentCanon),
		TypeOfInstitutionCanon: textPtr(rec.TypeOfInstitutionCanon),
		RemarksCanon:           textPtr(rec.RemarksCanon),

		YearStart:            intPtr(rec.Start),
		YearEnd:              intPtr(rec.End),
		YearLabel:            textPtr(rec.Label),
		DateISO:              textPtr(rec.DateISO),
		QuantityNum:          floatPtr(rec.QuantityNum),
		NoOfBeneficiariesNum: floatPtr(rec.NoOfBeneficiariesNum),
		AmountNum:            floatPtr(rec.AmountNum),

		RowHash: rec.RowHash,
	}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func intPtr(i pgtype.Int4) *int32 {
	if !i.Valid {
		return nil
	}
	return &i.Int32
}

func floatPtr(f pgtype.Float8) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}
