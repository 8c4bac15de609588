package core

import (
	"net/url"
	"reflect"
	"testing"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  FilterState
	}{
		{
			name:  "empty",
			query: "",
			want:  FilterState{Years: []int32{}},
		},
		{
			name:  "repeated years",
			query: "years=2022&years=2023",
			want:  FilterState{Years: []int32{2022, 2023}},
		},
		{
			name:  "comma separated years",
			query: "years=2021,%202022",
			want:  FilterState{Years: []int32{2021, 2022}},
		},
		{
			name:  "invalid years dropped",
			query: "years=abc,0,2023.5,2024,99999999999",
			want:  FilterState{Years: []int32{2024}},
		},
		{
			name:  "whole float accepted",
			query: "years=2023.0",
			want:  FilterState{Years: []int32{2023}},
		},
		{
			name:  "text filters",
			query: "project=Nutrition&subProject=Snacks&institute=School%20A&type=Government",
			want: FilterState{
				Years:      []int32{},
				Project:    "Nutrition",
				SubProject: "Snacks",
				Institute:  "School A",
				Type:       "Government",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			got := ParseFilters(q)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFilters() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFilterStateValues(t *testing.T) {
	f := FilterState{Years: []int32{2022, 2023}, SubProject: "Snacks"}

	q := f.Values()

	if got := q["years"]; !reflect.DeepEqual(got, []string{"2022", "2023"}) {
		t.Errorf("years = %v", got)
	}
	if q.Get("subProject") != "Snacks" {
		t.Errorf("subProject = %q", q.Get("subProject"))
	}
	if _, ok := q["project"]; ok {
		t.Error("empty project should be omitted")
	}

	if back := ParseFilters(q); !reflect.DeepEqual(back, f) {
		t.Errorf("ParseFilters(Values()) = %+v, want %+v", back, f)
	}
}
