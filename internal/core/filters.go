package core

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ParseFilters reads dashboard filters from query parameters.
//
// years may be repeated or comma-separated. Entries that are not whole
// numbers, and zero, are dropped. The remaining keys are project,
// subProject, institute and type.
func ParseFilters(q url.Values) FilterState {
	f := FilterState{
		Years:      []int32{},
		Project:    q.Get("project"),
		SubProject: q.Get("subProject"),
		Institute:  q.Get("institute"),
		Type:       q.Get("type"),
	}

	for _, v := range q["years"] {
		for _, part := range strings.Split(v, ",") {
			if year, ok := parseYearFilter(part); ok {
				f.Years = append(f.Years, year)
			}
		}
	}
	return f
}

func parseYearFilter(s string) (int32, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || n == 0 || n != math.Trunc(n) {
		return 0, false
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int32(n), true
}

// Values encodes f back into query parameters. Empty fields are omitted.
func (f FilterState) Values() url.Values {
	q := url.Values{}
	for _, y := range f.Years {
		q.Add("years", strconv.Itoa(int(y)))
	}
	set := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}
	set("project", f.Project)
	set("subProject", f.SubProject)
	set("institute", f.Institute)
	set("type", f.Type)
	return q
}
