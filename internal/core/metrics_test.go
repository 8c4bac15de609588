package core

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestComputeMetrics_Groups(t *testing.T) {
	facts := []Fact{
		{Project: text("Nutrition"), SubProject: text("Snacks"), Cause: text("Hunger"), YearStart: i4(2023), Beneficiaries: f8(10), Amount: f8(100), Quantity: f8(5)},
		{Project: text("Nutrition"), SubProject: text("Goodie Bag"), Cause: text("Hunger"), YearStart: i4(2022), Beneficiaries: f8(50), Amount: f8(20)},
		{Project: text("Health"), SubProject: text("Snacks"), Cause: text("Health"), YearStart: i4(2023), Beneficiaries: f8(15), Quantity: f8(1)},
		{Project: text("Health"), SubProject: text(""), YearStart: i4(0), Beneficiaries: f8(1)},
	}

	m := ComputeMetrics(facts)

	wantSub := []SubProjectMetric{
		{SubProject: "Goodie Bag", TotalBeneficiaries: 50, TotalAmount: 20, Count: 1},
		{SubProject: "Snacks", TotalBeneficiaries: 25, TotalAmount: 100, TotalQuantity: 6, Count: 2},
	}
	if !reflect.DeepEqual(m.BySubProject, wantSub) {
		t.Errorf("BySubProject = %+v, want %+v", m.BySubProject, wantSub)
	}

	wantYear := []YearMetric{
		{YearStart: 2022, TotalBeneficiaries: 50, TotalAmount: 20, Count: 1},
		{YearStart: 2023, TotalBeneficiaries: 25, TotalAmount: 100, TotalQuantity: 6, Count: 2},
	}
	if !reflect.DeepEqual(m.ByYear, wantYear) {
		t.Errorf("ByYear = %+v, want %+v", m.ByYear, wantYear)
	}

	wantCause := []CauseMetric{
		{Cause: "Hunger", TotalBeneficiaries: 60, TotalAmount: 120, Count: 2},
		{Cause: "Health", TotalBeneficiaries: 15, Count: 1},
	}
	if !reflect.DeepEqual(m.ByCause, wantCause) {
		t.Errorf("ByCause = %+v, want %+v", m.ByCause, wantCause)
	}

	o := m.Overall
	if o.TotalRecords != 4 || o.TotalBeneficiaries != 76 || o.TotalAmount != 120 || o.TotalQuantity != 6 {
		t.Errorf("Overall totals = %+v", o)
	}
	if o.UniqueProjects != 2 || o.UniqueSubProjects != 2 || o.UniqueCauses != 2 {
		t.Errorf("Overall unique counts = %+v", o)
	}
	if !reflect.DeepEqual(o.ProjectList, []string{"Health", "Nutrition"}) {
		t.Errorf("ProjectList = %v", o.ProjectList)
	}
	if !reflect.DeepEqual(o.SubProjectList, []string{"Goodie Bag", "Snacks"}) {
		t.Errorf("SubProjectList = %v", o.SubProjectList)
	}
}

func TestComputeMetrics_TiesKeepFirstSeenOrder(t *testing.T) {
	facts := []Fact{
		{SubProject: text("B"), Beneficiaries: f8(5)},
		{SubProject: text("A"), Beneficiaries: f8(5)},
		{SubProject: text("C"), Beneficiaries: f8(5)},
	}

	m := ComputeMetrics(facts)

	var got []string
	for _, s := range m.BySubProject {
		got = append(got, s.SubProject)
	}
	if !reflect.DeepEqual(got, []string{"B", "A", "C"}) {
		t.Errorf("order = %v, want [B A C]", got)
	}
}

func TestComputeMetrics_RemarksQuantity(t *testing.T) {
	facts := []Fact{
		{Remarks: text("Soap"), Quantity: f8(10), SubProject: text("Health Kit")},
		{Remarks: text("Soap"), Quantity: f8(5), Institute: text("School A"), SubProject: text("Other")},
		{Remarks: text("Soap"), Quantity: f8(1), Institute: text("School B")},
		{Remarks: text("Towel"), Quantity: f8(40)},
		{Remarks: text("Zero"), Quantity: f8(0)},
		{Remarks: text("Null"), Beneficiaries: f8(3)},
		{Remarks: text(""), Quantity: f8(100)},
	}

	m := ComputeMetrics(facts)

	if len(m.RemarksQuantity) != 2 {
		t.Fatalf("got %d remarks, want 2: %+v", len(m.RemarksQuantity), m.RemarksQuantity)
	}
	if m.RemarksQuantity[0].Remarks != "Towel" {
		t.Errorf("first remarks = %q, want Towel", m.RemarksQuantity[0].Remarks)
	}

	soap := m.RemarksQuantity[1]
	if soap.Quantity != 16 || soap.Count != 3 {
		t.Errorf("soap = %+v", soap)
	}
	if soap.Institute.String != "School A" {
		t.Errorf("institute = %q, want first non-null School A", soap.Institute.String)
	}
	if soap.SubProject.String != "Health Kit" {
		t.Errorf("sub project = %q, want Health Kit", soap.SubProject.String)
	}
}

func TestComputeMetrics_RemarksLimit(t *testing.T) {
	var facts []Fact
	for i := 1; i <= RemarksQuantityLimit+5; i++ {
		facts = append(facts, Fact{Remarks: text(fmt.Sprintf("item %d", i)), Quantity: f8(float64(i))})
	}

	m := ComputeMetrics(facts)

	if len(m.RemarksQuantity) != RemarksQuantityLimit {
		t.Fatalf("got %d remarks, want %d", len(m.RemarksQuantity), RemarksQuantityLimit)
	}
	if m.RemarksQuantity[0].Quantity != float64(RemarksQuantityLimit+5) {
		t.Errorf("top quantity = %v", m.RemarksQuantity[0].Quantity)
	}
}

func TestComputeMetrics_DecimalSums(t *testing.T) {
	facts := []Fact{
		{SubProject: text("Snacks"), Amount: f8(0.1)},
		{SubProject: text("Snacks"), Amount: f8(0.2)},
	}

	m := ComputeMetrics(facts)

	if m.Overall.TotalAmount != 0.3 {
		t.Errorf("TotalAmount = %v, want 0.3", m.Overall.TotalAmount)
	}
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil)

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(b)
	for _, key := range []string{`"bySubProject":[]`, `"byYear":[]`, `"byCause":[]`, `"remarksQuantity":[]`, `"project_list":[]`} {
		if !strings.Contains(s, key) {
			t.Errorf("JSON missing %s: %s", key, s)
		}
	}
}

func TestServiceMetrics_PassesFilters(t *testing.T) {
	store := newMemStore()
	store.facts = []Fact{{SubProject: text("Snacks"), Beneficiaries: f8(3)}}
	svc := newTestService(store)

	filters := FilterState{Years: []int32{2023}, Project: "Nutrition"}
	m, err := svc.Metrics(context.Background(), filters)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}

	if !reflect.DeepEqual(store.filters, filters) {
		t.Errorf("store saw filters %+v, want %+v", store.filters, filters)
	}
	if m.Overall.TotalBeneficiaries != 3 {
		t.Errorf("TotalBeneficiaries = %v, want 3", m.Overall.TotalBeneficiaries)
	}
}
