package discipline

import (
	"reflect"
	"testing"
)

func TestBucketCounts_RetirementScenario(t *testing.T) {
	records := []Record{
		{FieldCategory: "ACB", "retirementDate": "2020-01-01"},
		{FieldCategory: "ACB"},
		{FieldCategory: "Department"},
	}
	got := BucketCounts(records)
	want := Buckets{
		Department: BucketCount{Total: 1, Active: 1, Retired: 0},
		ACB:        BucketCount{Total: 2, Active: 1, Retired: 1},
		Vigilance:  BucketCount{},
	}
	if got != want {
		t.Errorf("BucketCounts = %+v, want %+v", got, want)
	}
}

func TestBucketCounts_VigilanceAndUnknown(t *testing.T) {
	got := BucketCounts([]Record{
		{FieldCategory: "Vigilance and Enforcement"},
		{FieldCategory: "vigilance"},
		{FieldCategory: "Something Else"},
		{},
	})
	if got.Vigilance.Total != 2 || got.ACB.Total != 0 || got.Department.Total != 0 {
		t.Errorf("BucketCounts = %+v", got)
	}
}

func TestIsRetired_Precedence(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"no signals", Record{}, false},
		{"status retired", Record{"employmentStatus": "Retired"}, true},
		{"status substring", Record{"serviceStatus": "Voluntarily RETIRED"}, true},
		{"snake status", Record{"status_of_employee": "retired on superannuation"}, true},
		{"status in service", Record{"employeeStatus": "In Service"}, false},
		{"flag bool", Record{"isRetired": true}, true},
		{"flag yes", Record{"retired": "Yes"}, true},
		{"flag TRUE", Record{"retirementFlag": "TRUE"}, true},
		{"flag false", Record{"isRetired": false, "retired": "no"}, false},
		{"date only", Record{"dateOfRetirement": "2019-05-31"}, true},
		{"retiredOn", Record{"retiredOn": "2019"}, true},
		{"blank date", Record{"retirementDate": "  "}, false},
		{"status wins over flags", Record{"employmentStatus": "Retired", "isRetired": false}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetired(tt.rec); got != tt.want {
				t.Errorf("IsRetired(%v) = %v, want %v", tt.rec, got, tt.want)
			}
		})
	}
}

func TestSubCategoryCounts(t *testing.T) {
	got := SubCategoryCounts([]Record{
		{FieldCategory: "ACB", FieldSubCategory: "Trap Case", "isRetired": true},
		{FieldCategory: "ACB", FieldCaseType: "Trap Case"},
		{FieldCategory: "ACB", FieldSubCategory: "Surprise Check"},
		{FieldCategory: "Department"},
	})
	want := map[string]map[string]BucketCount{
		"ACB": {
			"Trap Case":      {Total: 2, Active: 1, Retired: 1},
			"Surprise Check": {Total: 1, Active: 1},
		},
		"Department": {Unspecified: {Total: 1, Active: 1}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SubCategoryCounts = %v, want %v", got, want)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Record{
		{FieldCategory: "ACB", FieldStatus: "Pending", FieldSeverity: "High"},
		{FieldCategory: "Department", FieldStatus: "Closed", FieldSeverity: "High", "retired": "yes"},
		{FieldCategory: "Department"},
	})
	if s.Total != 3 || s.Active != 2 || s.Retired != 1 {
		t.Errorf("totals = %d/%d/%d", s.Total, s.Active, s.Retired)
	}
	if s.ByStatus["Pending"] != 1 || s.ByStatus["Closed"] != 1 || s.ByStatus[Unspecified] != 1 {
		t.Errorf("ByStatus = %v", s.ByStatus)
	}
	if s.BySeverity["High"] != 2 {
		t.Errorf("BySeverity = %v", s.BySeverity)
	}
	if s.Buckets.Department.Retired != 1 {
		t.Errorf("Buckets = %+v", s.Buckets)
	}
}

// ── Search ──

func TestSearchByNameOrID(t *testing.T) {
	records := []Record{
		{FieldEmployeeName: "Ravi Kumar", FieldEmployeeID: "EMP-100"},
		{FieldName: "Sita Devi", FieldEmployeeID: "EMP-200"},
		{FieldEmployeeName: "", FieldName: "Kumari Rao"},
	}

	for _, q := range []string{"", "   ", "\t"} {
		got := SearchByNameOrID(records, q)
		if got == nil || len(got) != 0 {
			t.Errorf("query %q: got %v, want empty non-nil slice", q, got)
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"kumar", 2},
		{"SITA", 1},
		{"emp-2", 1},
		{"emp", 2},
		{"nobody", 0},
	}
	for _, tt := range tests {
		if got := SearchByNameOrID(records, tt.query); len(got) != tt.want {
			t.Errorf("query %q: %d results, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	records := []Record{
		{KeyID: "a", KeyCreatedAt: "2025-01-01T00:00:00.000Z", FieldCategory: "ACB", FieldSubCategory: "Trap Case", FieldStatus: "Pending"},
		{KeyID: "b", KeyCreatedAt: "2025-03-01T00:00:00.000Z", FieldCategory: "ACB", FieldCaseType: "Surprise Check", FieldStatus: "Closed"},
		{KeyID: "c", KeyCreatedAt: "2025-02-01T00:00:00.000Z", FieldCategory: "Department", FieldStatus: "Pending", FieldEmployeeName: "Ravi"},
	}

	ids := func(rs []Record) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.ID())
		}
		return out
	}

	if got := ids(Filter(records, CaseFilter{})); !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Errorf("no filter = %v, want newest first", got)
	}
	if got := ids(Filter(records, CaseFilter{Category: "acb"})); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("category = %v", got)
	}
	if got := ids(Filter(records, CaseFilter{SubCategory: "Surprise Check"})); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("sub-category via alias = %v", got)
	}
	if got := ids(Filter(records, CaseFilter{Status: "pending", Query: "ravi"})); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("status + query = %v", got)
	}
}
