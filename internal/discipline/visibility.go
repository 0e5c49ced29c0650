package discipline

import "fmt"

// subCategory reads the sub-category through its alias.
func (e *Engine) subCategory(r Record) string { return subOf(r) }

func isYes(r Record, key string) bool {
	return fold(r.Text(key)) == "yes"
}

func textIs(r Record, key, want string) bool {
	return fold(r.Text(key)) == fold(want)
}

// DetailsUnlocked reports whether the category pair is set, valid and
// confirmed.
func (e *Engine) DetailsUnlocked(r Record) bool {
	cat := r.Text(FieldCategory)
	sub := e.subCategory(r)
	if cat == "" || sub == "" {
		return false
	}
	return e.catalog.ValidPair(cat, sub) && r.Bool(FieldCaseTypeConfirmed)
}

// VisibleSections returns the active sections in display order. It reads
// only the current record.
func (e *Engine) VisibleSections(r Record) []SectionID {
	details := e.DetailsUnlocked(r)
	wsd := details && isYes(r, FieldChargesIssued)
	inquiry := wsd &&
		isYes(r, FieldWSDOrServedCopy) &&
		!textIs(r, FieldFurtherActionWSD, "conclude") &&
		!textIs(r, FieldFurtherActionWSD, "others")
	wr := inquiry &&
		isYes(r, FieldInquiryReportSubmitted) &&
		(textIs(r, FieldFurtherActionInquiry, "agreed") ||
			(textIs(r, FieldFurtherActionInquiry, "disagreed") && textIs(r, FieldInquiryDisagreedAction, "communication")))

	active := map[SectionID]bool{
		SectionBasic:       true,
		SectionSuspension:  details,
		SectionProsecution: details,
		SectionWSD:         wsd,
		SectionInquiry:     inquiry,
		SectionWR:          wr,
		SectionRemarks:     true,
	}
	out := make([]SectionID, 0, len(Sections))
	for _, s := range Sections {
		if active[s.ID] {
			out = append(out, s.ID)
		}
	}
	return out
}

// Resolve applies the gate table and resets every field of every hidden
// section until the record stops changing. Its output is what gets stored.
func (e *Engine) Resolve(r Record) Record {
	cur := r.Clone()
	for i := 0; i <= len(Sections); i++ {
		next := e.clearHidden(e.ApplyGates(cur))
		if sameRecord(cur, next) {
			return next
		}
		cur = next
	}
	return cur
}

func (e *Engine) clearHidden(r Record) Record {
	visible := make(map[SectionID]bool, len(Sections))
	for _, id := range e.VisibleSections(r) {
		visible[id] = true
	}
	out := r.Clone()
	for _, f := range e.schema.fields {
		if visible[f.Section] {
			continue
		}
		out[f.Key] = f.Zero()
		if f.Alias != "" {
			out[f.Alias] = f.Zero()
		}
	}
	return out
}

// ApplyEdit sets one field and resolves the result. Changing the category
// or sub-category withdraws the confirmation, which collapses every detail
// section and closes its gates.
func (e *Engine) ApplyEdit(r Record, field string, value any) (Record, error) {
	def, ok := e.schema.Field(field)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	out := e.Normalize(r)
	before := fold(out.Text(def.Key))
	v := e.coerce(def, value)
	out[def.Key] = v
	if def.Alias != "" {
		out[def.Alias] = v
	}
	if (def.Key == FieldCategory || def.Key == FieldSubCategory) && before != fold(valueText(v)) {
		out[FieldCaseTypeConfirmed] = false
	}
	return e.Resolve(out), nil
}

// ConfirmCaseType locks in the category pair so the detail sections open.
func (e *Engine) ConfirmCaseType(r Record) (Record, error) {
	out := e.Normalize(r)
	cat := out.Text(FieldCategory)
	sub := out.Text(FieldSubCategory)
	errs := FieldErrors{}
	if cat == "" {
		errs[FieldCategory] = "Category of Case is required"
	}
	if sub == "" {
		errs[FieldSubCategory] = "Sub-Category of Case is required"
	}
	if len(errs) == 0 && !e.catalog.ValidPair(cat, sub) {
		errs[FieldSubCategory] = fmt.Sprintf("%q is not a sub-category of %q", sub, cat)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs, First: errs.First(e.schema)}
	}
	out[FieldCaseTypeConfirmed] = true
	return e.Resolve(out), nil
}

func sameRecord(a, b Record) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !sameScalar(av, bv) {
			return false
		}
	}
	return true
}

func sameScalar(a, b any) bool {
	switch at := a.(type) {
	case nil:
		return b == nil
	case string:
		bt, ok := b.(string)
		return ok && at == bt
	case bool:
		bt, ok := b.(bool)
		return ok && at == bt
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
