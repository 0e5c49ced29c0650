package dto

import "dcms/internal/discipline"

// ── Cases ──

// CaseListRequest filtered case list query.
type CaseListRequest struct {
	PaginationRequest
	discipline.CaseFilter
}

// CaseResponse a case record plus the sections it shows.
type CaseResponse struct {
	Record          discipline.Record      `json:"record"`
	VisibleSections []discipline.SectionID `json:"visible_sections"`
}

// CaseSchemaResponse describes the form to clients.
type CaseSchemaResponse struct {
	Sections []discipline.Section  `json:"sections"`
	Fields   []discipline.FieldDef `json:"fields"`
	Catalog  *discipline.Catalog   `json:"catalog"`
	Gates    []discipline.Gate     `json:"gates"`
}

// ResolveRequest is a form-assist call. When Field is set the edit is
// applied to Record first. Confirm locks in the category pair.
type ResolveRequest struct {
	Record  discipline.Record `json:"record"`
	Field   string            `json:"field"`
	Value   any               `json:"value"`
	Confirm bool              `json:"confirm"`
	Profile string            `json:"profile" binding:"omitempty,oneof=entry edit"`
}

// ResolveResponse the resolved form state.
type ResolveResponse struct {
	Record          discipline.Record      `json:"record"`
	VisibleSections []discipline.SectionID `json:"visible_sections"`
	DetailsUnlocked bool                   `json:"details_unlocked"`
	Errors          discipline.FieldErrors `json:"errors,omitempty"`
}

// BatchCreateRequest one-shot batch: shared header plus every entry.
type BatchCreateRequest struct {
	Header  discipline.Record   `json:"header"  binding:"required"`
	Entries []discipline.Record `json:"entries" binding:"required,min=1"`
}

// BatchResult is what a finalized batch persisted.
type BatchResult struct {
	Persisted int                 `json:"persisted"`
	Records   []discipline.Record `json:"records"`
}

// ── Draft batches ──

// BatchEntryRequest adds one employee to a draft.
type BatchEntryRequest struct {
	Entry discipline.Record `json:"entry" binding:"required"`
}
