package discipline

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profile selects a set of required-field rules.
type Profile int

const (
	// ProfileEntry gates the basic step of the create flow.
	ProfileEntry Profile = iota
	// ProfileEdit is the edit-existing-case flow.
	ProfileEdit
	// ProfileLegacyEdit is ProfileEdit plus a mandatory employee id.
	ProfileLegacyEdit
)

func (p Profile) String() string {
	switch p {
	case ProfileEntry:
		return "entry"
	case ProfileEdit:
		return "edit"
	case ProfileLegacyEdit:
		return "legacy-edit"
	}
	return fmt.Sprintf("profile(%d)", int(p))
}

// FieldErrors maps a field key to its message. Empty means valid.
type FieldErrors map[string]string

// First returns the field that comes earliest in schema order. Keys the
// schema does not know sort last, alphabetically.
func (fe FieldErrors) First(s *Schema) string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, oj := s.Order(keys[i]), s.Order(keys[j])
		switch {
		case oi < 0 && oj < 0:
			return keys[i] < keys[j]
		case oi < 0:
			return false
		case oj < 0:
			return true
		case oi != oj:
			return oi < oj
		}
		return keys[i] < keys[j]
	})
	return keys[0]
}

type requirement struct {
	key string
	// also are synonym keys that satisfy the requirement.
	also []string
}

func requirementsFor(p Profile) []requirement {
	switch p {
	case ProfileEntry:
		return []requirement{
			{key: FieldName, also: []string{FieldEmployeeName}},
			{key: FieldDesignation},
		}
	case ProfileLegacyEdit:
		return []requirement{
			{key: FieldEmployeeID},
			{key: FieldEmployeeName, also: []string{FieldName}},
			{key: FieldIncidentDate, also: []string{FieldDateOfIncident}},
			{key: FieldDescription},
		}
	default:
		return []requirement{
			{key: FieldEmployeeName, also: []string{FieldName}},
			{key: FieldIncidentDate, also: []string{FieldDateOfIncident}},
			{key: FieldDescription},
		}
	}
}

// Validate returns the field errors of r under profile p. Required-field
// rules depend on the profile; format, catalog and date checks run only on
// values that are present.
func (e *Engine) Validate(r Record, p Profile) FieldErrors {
	errs := FieldErrors{}

	for _, req := range requirementsFor(p) {
		if present(r, req.key) {
			continue
		}
		satisfied := false
		for _, k := range req.also {
			if present(r, k) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			errs[req.key] = e.label(req.key) + " is required"
		}
	}

	for _, f := range e.schema.fields {
		raw := r.Text(f.Key)
		if strings.TrimSpace(raw) == "" && f.Alias != "" {
			raw = r.Text(f.Alias)
		}
		v := strings.TrimSpace(raw)
		if v == "" || f.Kind == KindBoolean || f.Kind == KindText {
			continue
		}
		if msg := e.checkValue(f, v); msg != "" {
			if _, already := errs[f.Key]; !already {
				errs[f.Key] = msg
			}
		}
	}

	cat := strings.TrimSpace(r.Text(FieldCategory))
	sub := strings.TrimSpace(e.subCategory(r))
	if cat != "" && sub != "" {
		if _, ok := e.catalog.Category(cat); ok && !e.catalog.ValidPair(cat, sub) {
			if _, already := errs[FieldSubCategory]; !already {
				errs[FieldSubCategory] = fmt.Sprintf("%q is not a sub-category of %q", sub, cat)
			}
		}
	}
	return errs
}

func (e *Engine) checkValue(f FieldDef, v string) string {
	switch f.Kind {
	case KindDate:
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			return f.Label + " must be a date in YYYY-MM-DD format"
		}
		if f.Key == FieldIncidentDate && d.Format(DateLayout) > e.today() {
			return f.Label + " cannot be in the future"
		}
	case KindEnum:
		if f.OpenList {
			return ""
		}
		if _, ok := e.catalog.Canonical(f.Options, v); !ok {
			return fmt.Sprintf("%s has an unknown value %q", f.Label, v)
		}
	}
	return ""
}

// Check is Validate returning a *ValidationError when anything failed.
func (e *Engine) Check(r Record, p Profile) error {
	errs := e.Validate(r, p)
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs, First: errs.First(e.schema)}
}

func (e *Engine) label(key string) string {
	if f, ok := e.schema.Field(key); ok {
		return f.Label
	}
	return key
}

func present(r Record, key string) bool {
	return strings.TrimSpace(r.Text(key)) != ""
}
