package database

import (
	"reflect"
	"testing"
)

func TestNewWhereBuilder(t *testing.T) {
	wb := NewWhereBuilder()

	if wb.argIndex != 1 {
		t.Errorf("expected argIndex to be 1, got %d", wb.argIndex)
	}
	if len(wb.conditions) != 0 || len(wb.args) != 0 {
		t.Errorf("expected empty builder, got %d conditions and %d args", len(wb.conditions), len(wb.args))
	}
}

func TestWhereBuilder_Build_Empty(t *testing.T) {
	whereClause, args := NewWhereBuilder().Build()

	if whereClause != "" {
		t.Errorf("expected empty string for no conditions, got %q", whereClause)
	}
	if args != nil {
		t.Errorf("expected nil args for no conditions, got %v", args)
	}
}

func TestWhereBuilder_Add(t *testing.T) {
	tests := []struct {
		name       string
		build      func(wb *WhereBuilder)
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "single condition",
			build:      func(wb *WhereBuilder) { wb.Add("project", "Nutrition") },
			wantClause: " WHERE project = $1",
			wantArgs:   []interface{}{"Nutrition"},
		},
		{
			name: "multiple conditions",
			build: func(wb *WhereBuilder) {
				wb.Add("project", "Nutrition")
				wb.Add("institute", "City Hospital")
			},
			wantClause: " WHERE project = $1 AND institute = $2",
			wantArgs:   []interface{}{"Nutrition", "City Hospital"},
		},
		{
			name: "empty value skipped",
			build: func(wb *WhereBuilder) {
				wb.Add("project", "")
				wb.Add("institute", "City Hospital")
			},
			wantClause: " WHERE institute = $1",
			wantArgs:   []interface{}{"City Hospital"},
		},
		{
			name: "any with values",
			build: func(wb *WhereBuilder) {
				wb.AddAny("year_start", []int32{2018, 2019})
				wb.Add("project", "Nutrition")
			},
			wantClause: " WHERE year_start = ANY($1) AND project = $2",
			wantArgs:   []interface{}{[]int32{2018, 2019}, "Nutrition"},
		},
		{
			name:       "any without values skipped",
			build:      func(wb *WhereBuilder) { wb.AddAny("year_start", nil) },
			wantClause: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			tt.build(wb)

			whereClause, args := wb.Build()
			if whereClause != tt.wantClause {
				t.Errorf("expected %q, got %q", tt.wantClause, whereClause)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("expected args %v, got %v", tt.wantArgs, args)
			}
		})
	}
}
