package discipline

import (
	"strings"
	"time"
)

// ── Normalization ──

// Normalize coerces declared fields to their kind and syncs synonym
// pairs. The canonical key wins unless it is empty. Unknown keys pass
// through untouched.
func (e *Engine) Normalize(raw Record) Record {
	out := raw.Clone()
	for _, f := range e.schema.fields {
		v, has := out[f.Key]
		if f.Alias != "" && !present(out, f.Key) {
			if av, ok := out[f.Alias]; ok {
				v, has = av, true
			}
		}
		if !has {
			continue
		}
		c := e.coerce(f, v)
		out[f.Key] = c
		if f.Alias != "" {
			out[f.Alias] = c
		}
	}
	return out
}

func (e *Engine) coerce(f FieldDef, v any) any {
	switch f.Kind {
	case KindBoolean:
		return truthy(v)
	case KindEnum:
		if b, ok := v.(bool); ok && f.Options == ListYesNo {
			if b {
				return "yes"
			}
			return "no"
		}
		s := strings.TrimSpace(valueText(v))
		if s == "" {
			return ""
		}
		if canonical, ok := e.catalog.Canonical(f.Options, s); ok {
			return canonical
		}
		return s
	case KindDate:
		s := strings.TrimSpace(valueText(v))
		if s == "" {
			return ""
		}
		if _, err := time.Parse(DateLayout, s); err == nil {
			return s
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Format(DateLayout)
		}
		return s
	default:
		if v == nil {
			return ""
		}
		return valueText(v)
	}
}

// WithDefaults gives every absent declared field its initial value.
func (e *Engine) WithDefaults(r Record) Record {
	out := r.Clone()
	for _, f := range e.schema.fields {
		if v, ok := out[f.Key]; !ok || v == nil {
			out[f.Key] = f.Initial()
		}
		if f.Alias != "" {
			out[f.Alias] = out[f.Key]
		}
	}
	return out
}

// Present is the outbound form of a stored record: every declared field
// present and both keys of every synonym pair set.
func (e *Engine) Present(r Record) Record {
	return e.WithDefaults(e.Normalize(r))
}

// ── Create / update ──

// CreateEntry turns raw form input into a new case record with a fresh id
// and timestamps. A valid category pair is confirmed.
func (e *Engine) CreateEntry(raw Record) Record {
	rec := e.WithDefaults(e.Normalize(raw))
	if e.catalog.ValidPair(rec.Text(FieldCategory), rec.Text(FieldSubCategory)) {
		rec[FieldCaseTypeConfirmed] = true
	}
	rec = e.Resolve(rec)

	ts := e.timestamp()
	rec[KeyID] = e.newID()
	rec[KeyCreatedAt] = ts
	rec[KeyUpdatedAt] = ts
	return rec
}

// UpdateEntry merges patch over existing. The id and createdAt of existing
// are kept whatever the patch says, and an alias key in the patch beats
// the stored canonical value, even when it is empty. An unchanged valid
// category pair is always confirmed; a changed pair is confirmed only if
// the patch re-confirms it.
func (e *Engine) UpdateEntry(existing, patch Record) Record {
	merged := existing.Clone()
	for k, v := range patch {
		if k == KeyID || k == KeyCreatedAt {
			continue
		}
		merged[k] = v
	}
	for _, f := range e.schema.fields {
		if f.Alias == "" {
			continue
		}
		_, hasKey := patch[f.Key]
		_, hasAlias := patch[f.Alias]
		switch {
		case present(patch, f.Key):
			merged[f.Alias] = patch[f.Key]
		case hasAlias:
			merged[f.Key] = patch[f.Alias]
		case hasKey:
			merged[f.Alias] = patch[f.Key]
		}
	}

	rec := e.WithDefaults(e.Normalize(merged))

	prevCat := fold(existing.Text(FieldCategory))
	prevSub := fold(e.subCategory(existing))
	pairChanged := prevCat != fold(rec.Text(FieldCategory)) || prevSub != fold(rec.Text(FieldSubCategory))
	switch {
	case !e.catalog.ValidPair(rec.Text(FieldCategory), rec.Text(FieldSubCategory)):
		rec[FieldCaseTypeConfirmed] = false
	case pairChanged:
		rec[FieldCaseTypeConfirmed] = truthy(patch[FieldCaseTypeConfirmed])
	default:
		// stored rows may predate the confirmation flag
		rec[FieldCaseTypeConfirmed] = true
	}
	rec = e.Resolve(rec)

	if id, ok := existing[KeyID]; ok {
		rec[KeyID] = id
	}
	if created, ok := existing[KeyCreatedAt]; ok {
		rec[KeyCreatedAt] = created
	}
	rec[KeyUpdatedAt] = e.timestamp()
	return rec
}
