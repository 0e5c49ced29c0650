package discipline

import "strings"

// Branch is one arm of a gate: while the gate value is one of OpenWhen the
// dependents are live, otherwise they are reset to their empty value.
type Branch struct {
	OpenWhen   []string `json:"openWhen"`
	Dependents []string `json:"dependents"`
}

// Gate is a field whose value controls a block of dependent fields.
type Gate struct {
	Field    string   `json:"field"`
	Branches []Branch `json:"branches"`
}

func (b Branch) open(v any) bool {
	s := fold(valueText(v))
	if s == "" {
		return false
	}
	for _, w := range b.OpenWhen {
		if fold(w) == s {
			return true
		}
	}
	return false
}

func onYes(field string, deps ...string) Gate {
	return Gate{Field: field, Branches: []Branch{{OpenWhen: []string{"yes"}, Dependents: deps}}}
}

func on(value string, deps ...string) Branch {
	return Branch{OpenWhen: []string{value}, Dependents: deps}
}

// DefaultGates returns the dependency table, parents before children.
func DefaultGates() []Gate {
	return []Gate{
		{Field: FieldSubCategory, Branches: []Branch{
			on("Trap Case", "trapDate", "trapAmount"),
			on("Disproportionate Assets", "assetsValue"),
		}},
		onYes("suspended", "suspensionOrderNumber", "suspensionDate", "reinitiated"),
		onYes("reinitiated", "reinitiationOrderNumber", "reinitiationDate", "regularized"),
		onYes("regularized", "regularizationOrderNumber", "regularizationDate", "suspensionPeriodTreatedAs"),
		onYes("criminalCaseRegistered", "firNumber", "firDate", "policeStation", "criminalCourt", "criminalCaseNumber", "criminalCaseStatus"),
		onYes("prosecutionSanctioned", "prosecutionSanctionOrderNumber", "prosecutionSanctionDate", "prosecutionSanctionedBy"),
		onYes(FieldChargesIssued, "chargeMemoNumber", "chargeMemoDate", "chargesIssuedBy", "articlesOfCharge", FieldWSDOrServedCopy),
		onYes(FieldWSDOrServedCopy, "wsdIssuedBy", "wsdNumber", "wsdDate", FieldFurtherActionWSD),
		{Field: FieldFurtherActionWSD, Branches: []Branch{
			on("conclude", "concludeText"),
			on("appointIOPO", "ioAppointed", "poAppointed"),
			on("others", "othersTextWSD"),
		}},
		onYes("ioAppointed", "ioName", "ioDesignation", "ioOrderNumber", "ioAppointmentDate"),
		onYes("poAppointed", "poName", "poDesignation", "poOrderNumber", "poAppointmentDate"),
		onYes(FieldInquiryReportSubmitted, "inquiryReportNumber", "inquiryReportDate", "chargesProved", FieldFurtherActionInquiry),
		{Field: FieldFurtherActionInquiry, Branches: []Branch{
			on("disagreed", "disagreementReasons", FieldInquiryDisagreedAction),
		}},
		{Field: FieldInquiryDisagreedAction, Branches: []Branch{
			on("communication", "disagreementNoteNumber", "disagreementNoteDate"),
			on("others", "disagreedOthersText"),
		}},
		onYes("wrSubmitted", "wrNumber", "wrDate", "punishmentAwarded"),
		onYes("punishmentAwarded", "punishmentType", "punishmentOrderNumber", "punishmentOrderDate", "punishmentDetails"),
	}
}

// checkGates rejects tables that reference undeclared fields, declare a
// gate twice, share a dependent, contain a cycle or list a child gate
// before its parent.
func checkGates(s *Schema, gates []Gate) error {
	position := make(map[string]int, len(gates))
	owner := make(map[string]string)
	for i, g := range gates {
		if _, ok := s.Field(g.Field); !ok || s.Canonical(g.Field) != g.Field {
			return configErrorf("gate %q is not a declared field", g.Field)
		}
		if _, dup := position[g.Field]; dup {
			return configErrorf("gate %q declared twice", g.Field)
		}
		position[g.Field] = i
		if len(g.Branches) == 0 {
			return configErrorf("gate %q has no branches", g.Field)
		}
		for _, b := range g.Branches {
			if len(b.OpenWhen) == 0 {
				return configErrorf("gate %q has a branch with no opening value", g.Field)
			}
			for _, dep := range b.Dependents {
				if _, ok := s.Field(dep); !ok || s.Canonical(dep) != dep {
					return configErrorf("gate %q references undeclared field %q", g.Field, dep)
				}
				if prev, taken := owner[dep]; taken {
					return configErrorf("field %q is a dependent of both %q and %q", dep, prev, g.Field)
				}
				owner[dep] = g.Field
			}
		}
	}

	if cycle := findGateCycle(gates, position); cycle != nil {
		return configErrorf("gate cycle: %s", strings.Join(cycle, " -> "))
	}

	for _, g := range gates {
		parent, isChild := owner[g.Field]
		if isChild && position[parent] > position[g.Field] {
			return configErrorf("gate %q is declared before its parent %q", g.Field, parent)
		}
	}
	return nil
}

// findGateCycle returns the gate path of the first cycle found, or nil.
func findGateCycle(gates []Gate, position map[string]int) []string {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(gates))
	var path []string

	var visit func(field string) []string
	visit = func(field string) []string {
		state[field] = onStack
		path = append(path, field)
		g := gates[position[field]]
		for _, b := range g.Branches {
			for _, dep := range b.Dependents {
				if _, isGate := position[dep]; !isGate {
					continue
				}
				switch state[dep] {
				case onStack:
					start := 0
					for i, f := range path {
						if f == dep {
							start = i
							break
						}
					}
					return append(append([]string{}, path[start:]...), dep)
				case unvisited:
					if c := visit(dep); c != nil {
						return c
					}
				}
			}
		}
		path = path[:len(path)-1]
		state[field] = done
		return nil
	}

	for _, g := range gates {
		if state[g.Field] == unvisited {
			if c := visit(g.Field); c != nil {
				return c
			}
		}
	}
	return nil
}

// applyGates resets the dependents of every closed branch in one top-down
// pass. A dependent gate that gets reset is closed by the time its own
// entry is reached, so clearing cascades.
func applyGates(s *Schema, gates []Gate, r Record) Record {
	out := r.Clone()
	for _, g := range gates {
		v := out[g.Field]
		for _, b := range g.Branches {
			if b.open(v) {
				continue
			}
			for _, dep := range b.Dependents {
				f, _ := s.Field(dep)
				out[dep] = f.Zero()
				if f.Alias != "" {
					out[f.Alias] = f.Zero()
				}
			}
		}
	}
	return out
}
