package core

import (
	"context"
	"math"
	"sort"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// RemarksQuantityLimit caps the remarks/quantity breakdown.
const RemarksQuantityLimit = 20

type SubProjectMetric struct {
	SubProject         string  `json:"sub_project"`
	TotalBeneficiaries float64 `json:"total_beneficiaries"`
	TotalAmount        float64 `json:"total_amount"`
	TotalQuantity      float64 `json:"total_quantity"`
	Count              int     `json:"count"`
}

type YearMetric struct {
	YearStart          int32   `json:"year_start"`
	TotalBeneficiaries float64 `json:"total_beneficiaries"`
	TotalAmount        float64 `json:"total_amount"`
	TotalQuantity      float64 `json:"total_quantity"`
	Count              int     `json:"count"`
}

type CauseMetric struct {
	Cause              string  `json:"cause"`
	TotalBeneficiaries float64 `json:"total_beneficiaries"`
	TotalAmount        float64 `json:"total_amount"`
	Count              int     `json:"count"`
}

// RemarksQuantity groups rows that carry both remarks and a positive
// quantity. Institute and SubProject come from the first row that has one.
type RemarksQuantity struct {
	Remarks    string      `json:"remarks"`
	Quantity   float64     `json:"quantity"`
	Institute  pgtype.Text `json:"institute"`
	SubProject pgtype.Text `json:"sub_project"`
	Count      int         `json:"count"`
}

type OverallMetrics struct {
	TotalBeneficiaries float64  `json:"total_beneficiaries"`
	TotalAmount        float64  `json:"total_amount"`
	TotalQuantity      float64  `json:"total_quantity"`
	TotalRecords       int      `json:"total_records"`
	UniqueProjects     int      `json:"unique_projects"`
	UniqueSubProjects  int      `json:"unique_sub_projects"`
	UniqueCauses       int      `json:"unique_causes"`
	ProjectList        []string `json:"project_list"`
	SubProjectList     []string `json:"sub_project_list"`
	CauseList          []string `json:"cause_list"`
}

// Metrics is the dashboard aggregate over a filtered set of facts.
type Metrics struct {
	BySubProject    []SubProjectMetric `json:"bySubProject"`
	ByYear          []YearMetric       `json:"byYear"`
	ByCause         []CauseMetric      `json:"byCause"`
	RemarksQuantity []RemarksQuantity  `json:"remarksQuantity"`
	Overall         OverallMetrics     `json:"overall"`
}

// Metrics loads the facts matching filters and aggregates them.
func (s *Service) Metrics(ctx context.Context, filters FilterState) (Metrics, error) {
	facts, err := s.store.ListFacts(ctx, filters)
	if err != nil {
		return Metrics{}, err
	}
	return ComputeMetrics(facts), nil
}

// totals accumulates in decimal so large sums of fractional amounts do not
// drift.
type totals struct {
	beneficiaries decimal.Decimal
	amount        decimal.Decimal
	quantity      decimal.Decimal
	count         int
}

func (t *totals) add(f Fact) {
	t.beneficiaries = t.beneficiaries.Add(dec(f.Beneficiaries))
	t.amount = t.amount.Add(dec(f.Amount))
	t.quantity = t.quantity.Add(dec(f.Quantity))
	t.count++
}

// grouped keeps groups in first-seen order so equal sort keys stay stable.
type grouped[K comparable] struct {
	keys   []K
	groups map[K]*totals
}

func newGrouped[K comparable]() *grouped[K] {
	return &grouped[K]{groups: make(map[K]*totals)}
}

func (g *grouped[K]) add(key K, f Fact) {
	t, ok := g.groups[key]
	if !ok {
		t = &totals{}
		g.groups[key] = t
		g.keys = append(g.keys, key)
	}
	t.add(f)
}

type remarksAcc struct {
	remarks    string
	quantity   decimal.Decimal
	institute  pgtype.Text
	subProject pgtype.Text
	count      int
}

// ComputeMetrics aggregates facts into the dashboard breakdowns.
func ComputeMetrics(facts []Fact) Metrics {
	bySub := newGrouped[string]()
	byYear := newGrouped[int32]()
	byCause := newGrouped[string]()

	var remarkKeys []string
	remarks := make(map[string]*remarksAcc)

	projects := make(map[string]struct{})
	subProjects := make(map[string]struct{})
	causes := make(map[string]struct{})
	var overall totals

	for _, f := range facts {
		if present(f.SubProject) {
			subProjects[f.SubProject.String] = struct{}{}
			bySub.add(f.SubProject.String, f)
		}

		if f.YearStart.Valid && f.YearStart.Int32 != 0 {
			byYear.add(f.YearStart.Int32, f)
		}

		if present(f.Cause) {
			causes[f.Cause.String] = struct{}{}
			byCause.add(f.Cause.String, f)
		}

		if present(f.Remarks) && f.Quantity.Valid && f.Quantity.Float64 > 0 {
			acc, ok := remarks[f.Remarks.String]
			if !ok {
				acc = &remarksAcc{remarks: f.Remarks.String}
				remarks[f.Remarks.String] = acc
				remarkKeys = append(remarkKeys, f.Remarks.String)
			}
			acc.quantity = acc.quantity.Add(dec(f.Quantity))
			acc.count++
			if !acc.institute.Valid && present(f.Institute) {
				acc.institute = f.Institute
			}
			if !acc.subProject.Valid && present(f.SubProject) {
				acc.subProject = f.SubProject
			}
		}

		if present(f.Project) {
			projects[f.Project.String] = struct{}{}
		}
		overall.add(f)
	}

	m := Metrics{
		BySubProject:    make([]SubProjectMetric, 0, len(bySub.keys)),
		ByYear:          make([]YearMetric, 0, len(byYear.keys)),
		ByCause:         make([]CauseMetric, 0, len(byCause.keys)),
		RemarksQuantity: make([]RemarksQuantity, 0, len(remarkKeys)),
	}

	for _, k := range bySub.keys {
		t := bySub.groups[k]
		m.BySubProject = append(m.BySubProject, SubProjectMetric{
			SubProject:         k,
			TotalBeneficiaries: t.beneficiaries.InexactFloat64(),
			TotalAmount:        t.amount.InexactFloat64(),
			TotalQuantity:      t.quantity.InexactFloat64(),
			Count:              t.count,
		})
	}
	sort.SliceStable(m.BySubProject, func(i, j int) bool {
		return m.BySubProject[i].TotalBeneficiaries > m.BySubProject[j].TotalBeneficiaries
	})

	for _, k := range byYear.keys {
		t := byYear.groups[k]
		m.ByYear = append(m.ByYear, YearMetric{
			YearStart:          k,
			TotalBeneficiaries: t.beneficiaries.InexactFloat64(),
			TotalAmount:        t.amount.InexactFloat64(),
			TotalQuantity:      t.quantity.InexactFloat64(),
			Count:              t.count,
		})
	}
	sort.SliceStable(m.ByYear, func(i, j int) bool {
		return m.ByYear[i].YearStart < m.ByYear[j].YearStart
	})

	for _, k := range byCause.keys {
		t := byCause.groups[k]
		m.ByCause = append(m.ByCause, CauseMetric{
			Cause:              k,
			TotalBeneficiaries: t.beneficiaries.InexactFloat64(),
			TotalAmount:        t.amount.InexactFloat64(),
			Count:              t.count,
		})
	}
	sort.SliceStable(m.ByCause, func(i, j int) bool {
		return m.ByCause[i].TotalBeneficiaries > m.ByCause[j].TotalBeneficiaries
	})

	for _, k := range remarkKeys {
		acc := remarks[k]
		m.RemarksQuantity = append(m.RemarksQuantity, RemarksQuantity{
			Remarks:    acc.remarks,
			Quantity:   acc.quantity.InexactFloat64(),
			Institute:  acc.institute,
			SubProject: acc.subProject,
			Count:      acc.count,
		})
	}
	sort.SliceStable(m.RemarksQuantity, func(i, j int) bool {
		return m.RemarksQuantity[i].Quantity > m.RemarksQuantity[j].Quantity
	})
	if len(m.RemarksQuantity) > RemarksQuantityLimit {
		m.RemarksQuantity = m.RemarksQuantity[:RemarksQuantityLimit]
	}

	m.Overall = OverallMetrics{
		TotalBeneficiaries: overall.beneficiaries.InexactFloat64(),
		TotalAmount:        overall.amount.InexactFloat64(),
		TotalQuantity:      overall.quantity.InexactFloat64(),
		TotalRecords:       len(facts),
		UniqueProjects:     len(projects),
		UniqueSubProjects:  len(subProjects),
		UniqueCauses:       len(causes),
		ProjectList:        sortedKeys(projects),
		SubProjectList:     sortedKeys(subProjects),
		CauseList:          sortedKeys(causes),
	}
	return m
}

func present(t pgtype.Text) bool {
	return t.Valid && t.String != ""
}

func dec(f pgtype.Float8) decimal.Decimal {
	if !f.Valid || math.IsNaN(f.Float64) || math.IsInf(f.Float64, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f.Float64)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
