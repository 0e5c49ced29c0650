package discipline

import "strings"

// Retirement signals, in precedence order. Legacy rows may carry any
// subset of them.
var (
	employmentStatusKeys = []string{"employmentStatus", "employeeStatus", "serviceStatus", "status_of_employee"}
	retirementFlagKeys   = []string{"isRetired", "retired", "retirementFlag"}
	retirementDateKeys   = []string{"retirementDate", "dateOfRetirement", "retiredOn"}
)

// IsRetired infers retirement: an employment status mentioning "retired"
// wins, then a true-ish retirement flag, then any retirement date.
func IsRetired(r Record) bool {
	for _, k := range employmentStatusKeys {
		if strings.Contains(strings.ToLower(r.Text(k)), "retired") {
			return true
		}
	}
	for _, k := range retirementFlagKeys {
		switch v := r[k].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			s := fold(v)
			if s == "true" || s == "yes" {
				return true
			}
		}
	}
	for _, k := range retirementDateKeys {
		if strings.TrimSpace(r.Text(k)) != "" {
			return true
		}
	}
	return false
}

// BucketCount splits a count into active and retired employees.
type BucketCount struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Retired int `json:"retired"`
}

func (b *BucketCount) add(r Record) {
	b.Total++
	if IsRetired(r) {
		b.Retired++
	} else {
		b.Active++
	}
}

// Buckets holds the per-category report counts.
type Buckets struct {
	Department BucketCount `json:"Department"`
	ACB        BucketCount `json:"ACB"`
	Vigilance  BucketCount `json:"Vigilance"`
}

func (b *Buckets) slot(category string) *BucketCount {
	switch c := fold(category); {
	case c == "department":
		return &b.Department
	case c == "acb":
		return &b.ACB
	case c == "vigilance" || strings.HasPrefix(c, "vigilance and enforcement"):
		return &b.Vigilance
	}
	return nil
}

// BucketCounts counts records per category bucket. Records with any other
// category are ignored.
func BucketCounts(records []Record) Buckets {
	var b Buckets
	for _, r := range records {
		if slot := b.slot(r.Text(FieldCategory)); slot != nil {
			slot.add(r)
		}
	}
	return b
}

// Unspecified labels records missing a category or sub-category.
const Unspecified = "Unspecified"

// SubCategoryCounts is the bifurcation view: category, then sub-category.
func SubCategoryCounts(records []Record) map[string]map[string]BucketCount {
	out := map[string]map[string]BucketCount{}
	for _, r := range records {
		cat := strings.TrimSpace(r.Text(FieldCategory))
		if cat == "" {
			cat = Unspecified
		}
		sub := strings.TrimSpace(r.Text(FieldSubCategory))
		if sub == "" {
			sub = strings.TrimSpace(r.Text(FieldCaseType))
		}
		if sub == "" {
			sub = Unspecified
		}
		if out[cat] == nil {
			out[cat] = map[string]BucketCount{}
		}
		bc := out[cat][sub]
		bc.add(r)
		out[cat][sub] = bc
	}
	return out
}

// Summary is the dashboard view of a record set.
type Summary struct {
	Total         int                               `json:"total"`
	Active        int                               `json:"active"`
	Retired       int                               `json:"retired"`
	Buckets       Buckets                           `json:"buckets"`
	SubCategories map[string]map[string]BucketCount `json:"subCategories"`
	ByStatus      map[string]int                    `json:"byStatus"`
	BySeverity    map[string]int                    `json:"bySeverity"`
}

// Summarize computes every dashboard count in one pass over records.
func Summarize(records []Record) Summary {
	s := Summary{
		Buckets:       BucketCounts(records),
		SubCategories: SubCategoryCounts(records),
		ByStatus:      map[string]int{},
		BySeverity:    map[string]int{},
	}
	for _, r := range records {
		s.Total++
		if IsRetired(r) {
			s.Retired++
		} else {
			s.Active++
		}
		s.ByStatus[labelOr(r.Text(FieldStatus))]++
		s.BySeverity[labelOr(r.Text(FieldSeverity))]++
	}
	return s
}

func labelOr(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return Unspecified
	}
	return v
}
