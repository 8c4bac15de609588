package cleaner

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// RawRow is one spreadsheet row keyed by header label.
// Values are strings, numbers, time.Time or nil.
type RawRow map[string]any

// Lookup returns the first non-nil value among columns, in priority order.
func (r RawRow) Lookup(columns ...string) any {
	for _, c := range columns {
		if v, ok := r[c]; ok && v != nil {
			return v
		}
	}
	return nil
}

// Column aliases in priority order. Sheets renamed some headers over time.
var (
	ColSrNo              = []string{"Sr.No"}
	ColYear              = []string{"Year"}
	ColMonth             = []string{"Month"}
	ColDate              = []string{"Date"}
	ColCause             = []string{"Cause"}
	ColProject           = []string{"Project"}
	ColSubProject        = []string{"Sub Project"}
	ColInstitute         = []string{"Institute", "Name of Institute / Area of Service"}
	ColDepartment        = []string{"Department"}
	ColTypeOfInstitution = []string{"Type of Institution", "Type of Institute"}
	ColQuantity          = []string{"Quantity"}
	ColBeneficiaries     = []string{"No. of Beneficiaries"}
	ColRemarks           = []string{"Remarks", "Services / Remarks"}
	ColAmount            = []string{"Amount"}
	ColComments          = []string{"Comments by Pankti"}
	ColOnAccountKind     = []string{"On account / Kind"}
)

var allColumns = [][]string{
	ColSrNo, ColYear, ColMonth, ColDate, ColCause, ColProject, ColSubProject,
	ColInstitute, ColDepartment, ColTypeOfInstitution, ColQuantity,
	ColBeneficiaries, ColRemarks, ColAmount, ColComments, ColOnAccountKind,
}

// CanonicalRecord is the cleaned form of one tracker row. It keeps the
// original text of every field next to its normalized variants.
type CanonicalRecord struct {
	SrNo              pgtype.Text `json:"sr_no"`
	Year              pgtype.Text `json:"year"`
	Month             pgtype.Text `json:"month"`
	Date              pgtype.Text `json:"date"`
	Cause             pgtype.Text `json:"cause"`
	Project           pgtype.Text `json:"project"`
	SubProject        pgtype.Text `json:"sub_project"`
	Institute         pgtype.Text `json:"institute"`
	Department        pgtype.Text `json:"department"`
	TypeOfInstitution pgtype.Text `json:"type_of_institution"`
	Quantity          pgtype.Text `json:"quantity"`
	NoOfBeneficiaries pgtype.Text `json:"no_of_beneficiaries"`
	Remarks           pgtype.Text `json:"remarks"`
	Amount            pgtype.Text `json:"amount"`
	Comments          pgtype.Text `json:"comments"`
	OnAccountKind     pgtype.Text `json:"on_account_kind"`

	MonthCanon             pgtype.Text `json:"month_canon"`
	CauseCanon             pgtype.Text `json:"cause_canon"`
	ProjectCanon           pgtype.Text `json:"project_canon"`
	SubProjectCanon        pgtype.Text `json:"sub_project_canon"`
	InstituteCanon         pgtype.Text `json:"institute_canon"`
	DepartmentCanon        pgtype.Text `json:"department_canon"`
	TypeOfInstitutionCanon pgtype.Text `json:"type_of_institution_canon"`
	RemarksCanon           pgtype.Text `json:"remarks_canon"`

	YearRange

	DateISO              pgtype.Text   `json:"date_iso"`
	QuantityNum          pgtype.Float8 `json:"quantity_num"`
	NoOfBeneficiariesNum pgtype.Float8 `json:"no_of_beneficiaries_num"`
	AmountNum            pgtype.Float8 `json:"amount_num"`

	RowHash string `json:"row_hash"`
}

// CleanRow resolves aliases and normalizes every field of a raw row.
// Missing columns produce NULL originals and NULL derived values.
func CleanRow(raw RawRow) CanonicalRecord {
	rec := CanonicalRecord{
		SrNo:              textOf(raw.Lookup(ColSrNo...)),
		Year:              textOf(raw.Lookup(ColYear...)),
		Month:             textOf(raw.Lookup(ColMonth...)),
		Date:              textOf(raw.Lookup(ColDate...)),
		Cause:             textOf(raw.Lookup(ColCause...)),
		Project:           textOf(raw.Lookup(ColProject...)),
		SubProject:        textOf(raw.Lookup(ColSubProject...)),
		Institute:         textOf(raw.Lookup(ColInstitute...)),
		Department:        textOf(raw.Lookup(ColDepartment...)),
		TypeOfInstitution: textOf(raw.Lookup(ColTypeOfInstitution...)),
		Quantity:          textOf(raw.Lookup(ColQuantity...)),
		NoOfBeneficiaries: textOf(raw.Lookup(ColBeneficiaries...)),
		Remarks:           textOf(raw.Lookup(ColRemarks...)),
		Amount:            textOf(raw.Lookup(ColAmount...)),
		Comments:          textOf(raw.Lookup(ColComments...)),
		OnAccountKind:     textOf(raw.Lookup(ColOnAccountKind...)),
	}

	rec.MonthCanon = Canonicalize(rec.Month)
	rec.CauseCanon = Canonicalize(rec.Cause)
	rec.ProjectCanon = Canonicalize(rec.Project)
	rec.SubProjectCanon = Canonicalize(rec.SubProject)
	rec.InstituteCanon = Canonicalize(rec.Institute)
	rec.DepartmentCanon = Canonicalize(rec.Department)
	rec.TypeOfInstitutionCanon = Canonicalize(rec.TypeOfInstitution)
	rec.RemarksCanon = Canonicalize(rec.Remarks)

	rec.YearRange = ParseYear(rec.Year)
	// The raw cell, not its text form, so serial numbers and time.Time
	// values keep their type.
	rec.DateISO = ParseDate(raw.Lookup(ColDate...))
	rec.QuantityNum = ParseNumeric(rec.Quantity)
	rec.NoOfBeneficiariesNum = ParseNumeric(rec.NoOfBeneficiaries)
	rec.AmountNum = ParseNumeric(rec.Amount)

	rec.RowHash = RowHash(rec.SrNo, rec.Date, rec.Project, rec.SubProject)

	return rec
}

// CleanRows cleans a batch, preserving order.
func CleanRows(rows []RawRow) []CanonicalRecord {
	out := make([]CanonicalRecord, len(rows))
	for i, r := range rows {
		out[i] = CleanRow(r)
	}
	return out
}

// RowHash is the hex SHA-256 of "sr_no|date|project|sub_project" over the
// original text, with NULL rendered as empty. It is the upsert key, so an
// edit to any other column updates the existing row in place.
func RowHash(srNo, date, project, subProject pgtype.Text) string {
	key := strings.Join([]string{
		srNo.String, date.String, project.String, subProject.String,
	}, "|")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// UnknownColumns returns the headers no field reads from, in input order.
func UnknownColumns(headers []string) []string {
	known := make(map[string]struct{})
	for _, cols := range allColumns {
		for _, c := range cols {
			known[c] = struct{}{}
		}
	}

	var unknown []string
	for _, h := range headers {
		if h == "" {
			continue
		}
		if _, ok := known[h]; !ok {
			unknown = append(unknown, h)
		}
	}
	return unknown
}
