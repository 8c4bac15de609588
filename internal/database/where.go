package database

import (
	"fmt"
	"strings"
)

// WhereBuilder assembles a parameterized WHERE clause. Column names are
// trusted; only values become arguments.
type WhereBuilder struct {
	conditions []string
	args       []interface{}
	argIndex   int
}

func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "column = $n". Empty values are skipped.
func (wb *WhereBuilder) Add(column, value string) {
	if value == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", column, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddAny appends "column = ANY($n)". An empty slice is skipped.
func (wb *WhereBuilder) AddAny(column string, values []int32) {
	if len(values) == 0 {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = ANY($%d)", column, wb.argIndex))
	wb.args = append(wb.args, values)
	wb.argIndex++
}

// Build returns " WHERE ..." and its arguments, or "" and nil.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}
