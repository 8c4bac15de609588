package database

import (
	"context"
)

const listFacts = `SELECT id, project, sub_project, cause, institute, type_of_institution,
    remarks, year_start, year_end, year_label, date, quantity, beneficiaries, amount
FROM facts_clean`

// FactFilter narrows ListFacts. Zero values match everything.
type FactFilter struct {
	Years             []int32
	Project           string
	SubProject        string
	Institute         string
	TypeOfInstitution string
}

// ListFacts returns facts_clean rows matching every set filter.
func (q *Queries) ListFacts(ctx context.Context, f FactFilter) ([]FactsClean, error) {
	wb := NewWhereBuilder()
	wb.AddAny("year_start", f.Years)
	wb.Add("project", f.Project)
	wb.Add("sub_project", f.SubProject)
	wb.Add("institute", f.Institute)
	wb.Add("type_of_institution", f.TypeOfInstitution)

	where, args := wb.Build()
	rows, err := q.db.Query(ctx, listFacts+where+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []FactsClean
	for rows.Next() {
		var i FactsClean
		if err := rows.Scan(
			&i.ID,
			&i.Project,
			&i.SubProject,
			&i.Cause,
			&i.Institute,
			&i.TypeOfInstitution,
			&i.Remarks,
			&i.YearStart,
			&i.YearEnd,
			&i.YearLabel,
			&i.Date,
			&i.Quantity,
			&i.Beneficiaries,
			&i.Amount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
