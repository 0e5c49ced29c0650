package discipline

import (
	"sort"
	"strings"
)

func matchesNameOrID(r Record, q string) bool {
	name := r.Text(FieldEmployeeName)
	if strings.TrimSpace(name) == "" {
		name = r.Text(FieldName)
	}
	return strings.Contains(strings.ToLower(name), q) ||
		strings.Contains(strings.ToLower(r.Text(FieldEmployeeID)), q)
}

// SearchByNameOrID matches query case-insensitively against the employee
// name and id. A blank query matches nothing.
func SearchByNameOrID(records []Record, query string) []Record {
	q := fold(query)
	out := []Record{}
	if q == "" {
		return out
	}
	for _, r := range records {
		if matchesNameOrID(r, q) {
			out = append(out, r)
		}
	}
	return out
}

// CaseFilter narrows a case listing. Empty fields do not filter.
type CaseFilter struct {
	Category    string `form:"category" json:"category"`
	SubCategory string `form:"subCategory" json:"subCategory"`
	Status      string `form:"status" json:"status"`
	Severity    string `form:"severity" json:"severity"`
	ULB         string `form:"ulb" json:"ulb"`
	Query       string `form:"q" json:"q"`
}

// Filter returns the records matching f, newest first.
func Filter(records []Record, f CaseFilter) []Record {
	q := fold(f.Query)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !equalsFold(r.Text(FieldCategory), f.Category) ||
			!equalsFold(subOf(r), f.SubCategory) ||
			!equalsFold(r.Text(FieldStatus), f.Status) ||
			!equalsFold(r.Text(FieldSeverity), f.Severity) ||
			!equalsFold(r.Text(FieldULB), f.ULB) {
			continue
		}
		if q != "" && !matchesNameOrID(r, q) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return stamp(out[i]) > stamp(out[j])
	})
	return out
}

func equalsFold(have, want string) bool {
	return want == "" || fold(have) == fold(want)
}

func subOf(r Record) string {
	if s := r.Text(FieldSubCategory); s != "" {
		return s
	}
	return r.Text(FieldCaseType)
}

func stamp(r Record) string {
	if s := r.Text(KeyCreatedAt); s != "" {
		return s
	}
	return r.Text(KeyUpdatedAt)
}
