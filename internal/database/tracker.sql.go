package database

import (
	"context"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
)

const upsertTrackerRow = `-- name: UpsertTrackerRow :one
INSERT INTO tracker_raw (
    sr_no, year, month, date, cause, project, sub_project, institute,
    department, type_of_institution, quantity, no_of_beneficiaries,
    remarks, amount, comments, on_account_kind, month_canon,
    cause_canon, project_canon, sub_project_canon, institute_canon,
    department_canon, type_of_institution_canon, remarks_canon,
    year_start, year_end, year_label, date_iso, quantity_num,
    no_of_beneficiaries_num, amount_num, row_hash
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
    $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27,
    $28::text::date, $29::float8, $30::float8, $31::float8, $32
)
ON CONFLICT (row_hash) DO UPDATE SET
    sr_no = EXCLUDED.sr_no,
    year = EXCLUDED.year,
    month = EXCLUDED.month,
    date = EXCLUDED.date,
    cause = EXCLUDED.cause,
    project = EXCLUDED.project,
    sub_project = EXCLUDED.sub_project,
    institute = EXCLUDED.institute,
    department = EXCLUDED.department,
    type_of_institution = EXCLUDED.type_of_institution,
    quantity = EXCLUDED.quantity,
    no_of_beneficiaries = EXCLUDED.no_of_beneficiaries,
    remarks = EXCLUDED.remarks,
    amount = EXCLUDED.amount,
    comments = EXCLUDED.comments,
    on_account_kind = EXCLUDED.on_account_kind,
    month_canon = EXCLUDED.month_canon,
    cause_canon = EXCLUDED.cause_canon,
    project_canon = EXCLUDED.project_canon,
    sub_project_canon = EXCLUDED.sub_project_canon,
    institute_canon = EXCLUDED.institute_canon,
    department_canon = EXCLUDED.department_canon,
    type_of_institution_canon = EXCLUDED.type_of_institution_canon,
    remarks_canon = EXCLUDED.remarks_canon,
    year_start = EXCLUDED.year_start,
    year_end = EXCLUDED.year_end,
    year_label = EXCLUDED.year_label,
    date_iso = EXCLUDED.date_iso,
    quantity_num = EXCLUDED.quantity_num,
    no_of_beneficiaries_num = EXCLUDED.no_of_beneficiaries_num,
    amount_num = EXCLUDED.amount_num,
    updated_at = NOW()
RETURNING id
`

// UpsertTrackerRow inserts a cleaned row, or overwrites the row with the
// same row_hash. Returns the row id.
func (q *Queries) UpsertTrackerRow(ctx context.Context, rec cleaner.CanonicalRecord) (int64, error) {
	row := q.db.QueryRow(ctx, upsertTrackerRow,
		rec.SrNo,
		rec.Year,
		rec.Month,
		rec.Date,
		rec.Cause,
		rec.Project,
		rec.SubProject,
		rec.Institute,
		rec.Department,
		rec.TypeOfInstitution,
		rec.Quantity,
		rec.NoOfBeneficiaries,
		rec.Remarks,
		rec.Amount,
		rec.Comments,
		rec.OnAccountKind,
		rec.MonthCanon,
		rec.CauseCanon,
		rec.ProjectCanon,
		rec.SubProjectCanon,
		rec.InstituteCanon,
		rec.DepartmentCanon,
		rec.TypeOfInstitutionCanon,
		rec.RemarksCanon,
		rec.Start,
		rec.End,
		rec.Label,
		rec.DateISO,
		rec.QuantityNum,
		rec.NoOfBeneficiariesNum,
		rec.AmountNum,
		rec.RowHash,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}
