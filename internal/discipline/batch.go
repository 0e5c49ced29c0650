package discipline

import "context"

// BatchState is an in-progress multi-employee submission. All entries share
// the file-level fields and the confirmed category pair.
type BatchState struct {
	ID                string   `json:"id"`
	FileNumber        string   `json:"fileNumber"`
	EOfficeNumber     string   `json:"eOfficeNumber"`
	CategoryOfCase    string   `json:"categoryOfCase"`
	SubCategoryOfCase string   `json:"subCategoryOfCase"`
	CaseTypeConfirmed bool     `json:"caseTypeConfirmed"`
	Entries           []Record `json:"entries"`
	Working           Record   `json:"working"`
	CreatedAt         string   `json:"createdAt"`
}

// Appender persists one record. It is the write side of the storage
// collaborator seen by batch finalization.
type Appender interface {
	Append(ctx context.Context, rec Record) error
}

// AppenderFunc adapts a function to Appender.
type AppenderFunc func(ctx context.Context, rec Record) error

// Append calls f.
func (f AppenderFunc) Append(ctx context.Context, rec Record) error { return f(ctx, rec) }

// NewBatch starts a batch from the file-level fields in header.
func (e *Engine) NewBatch(header Record) BatchState {
	h := e.Normalize(header)
	st := BatchState{
		ID:                e.newID(),
		FileNumber:        h.Text(FieldFileNumber),
		EOfficeNumber:     h.Text(FieldEOfficeNumber),
		CategoryOfCase:    h.Text(FieldCategory),
		SubCategoryOfCase: h.Text(FieldSubCategory),
		CreatedAt:         e.timestamp(),
	}
	st.CaseTypeConfirmed = e.catalog.ValidPair(st.CategoryOfCase, st.SubCategoryOfCase)
	st.Working = st.blank()
	return st
}

// blank is a fresh working form carrying only the shared fields.
func (st BatchState) blank() Record {
	r := Record{
		FieldFileNumber:    st.FileNumber,
		FieldEOfficeNumber: st.EOfficeNumber,
	}
	if st.CaseTypeConfirmed {
		r[FieldCategory] = st.CategoryOfCase
		r[FieldSubCategory] = st.SubCategoryOfCase
		r[FieldCaseType] = st.SubCategoryOfCase
		r[FieldCaseTypeConfirmed] = true
	}
	return r
}

func (st BatchState) clone() BatchState {
	out := st
	out.Entries = make([]Record, len(st.Entries))
	copy(out.Entries, st.Entries)
	out.Working = st.Working.Clone()
	return out
}

// AddEmployeeToBatch validates entry under ProfileEntry, creates it with
// the batch's shared fields and appends it. The first entry that sets a
// file-level field fixes it for the rest of the batch. The input state is
// never modified; on error it is returned as is.
func (e *Engine) AddEmployeeToBatch(state BatchState, entry Record) (BatchState, error) {
	in := e.Normalize(entry)
	next := state.clone()

	if next.FileNumber != "" {
		in[FieldFileNumber] = next.FileNumber
	} else {
		next.FileNumber = in.Text(FieldFileNumber)
	}
	if next.EOfficeNumber != "" {
		in[FieldEOfficeNumber] = next.EOfficeNumber
	} else {
		next.EOfficeNumber = in.Text(FieldEOfficeNumber)
	}
	if next.CaseTypeConfirmed {
		in[FieldCategory] = next.CategoryOfCase
		in[FieldSubCategory] = next.SubCategoryOfCase
		in[FieldCaseType] = next.SubCategoryOfCase
		in[FieldCaseTypeConfirmed] = true
	} else if cat, sub := in.Text(FieldCategory), in.Text(FieldSubCategory); e.catalog.ValidPair(cat, sub) {
		next.CategoryOfCase = cat
		next.SubCategoryOfCase = sub
		next.CaseTypeConfirmed = true
	}

	if err := e.Check(in, ProfileEntry); err != nil {
		return state, err
	}

	next.Entries = append(next.Entries, e.CreateEntry(in))
	next.Working = next.blank()
	return next, nil
}

// RemoveFromBatch drops the entry with the given id. An unknown id leaves
// the state unchanged and reports false.
func (e *Engine) RemoveFromBatch(state BatchState, entryID string) (BatchState, bool) {
	for i, rec := range state.Entries {
		if rec.ID() != entryID {
			continue
		}
		next := state.clone()
		next.Entries = append(next.Entries[:i:i], state.Entries[i+1:]...)
		return next, true
	}
	return state, false
}

// FinalizeBatch persists the entries one at a time in submission order,
// re-stamping timestamps first. It stops at the first failure and returns
// what was already persisted together with a *BatchError. Nothing is
// rolled back.
func (e *Engine) FinalizeBatch(ctx context.Context, state BatchState, app Appender) ([]Record, error) {
	if len(state.Entries) == 0 {
		return nil, ErrEmptyBatch
	}
	persisted := make([]Record, 0, len(state.Entries))
	for i, entry := range state.Entries {
		rec := entry.Clone()
		ts := e.timestamp()
		rec[KeyCreatedAt] = ts
		rec[KeyUpdatedAt] = ts

		err := ctx.Err()
		if err == nil {
			err = app.Append(ctx, rec)
		}
		if err != nil {
			return persisted, &BatchError{
				Total:       len(state.Entries),
				Persisted:   len(persisted),
				FailedIndex: i,
				FailedID:    rec.ID(),
				Err:         err,
			}
		}
		persisted = append(persisted, rec)
	}
	return persisted, nil
}
