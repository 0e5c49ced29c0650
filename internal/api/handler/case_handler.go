package handler

import (
	"github.com/gin-gonic/gin"

	"dcms/internal/discipline"
	"dcms/internal/dto"
	"dcms/internal/service"
	"dcms/pkg/response"
)

// CaseHandler case endpoints.
type CaseHandler struct {
	caseSvc service.CaseService
}

// NewCaseHandler creates a CaseHandler.
func NewCaseHandler(caseSvc service.CaseService) *CaseHandler {
	return &CaseHandler{caseSvc: caseSvc}
}

// Schema describes sections, fields, option lists and gates.
// GET /api/v1/cases/schema
func (h *CaseHandler) Schema(c *gin.Context) {
	response.OK(c, h.caseSvc.Schema())
}

// Resolve is the form-assist call.
// POST /api/v1/cases/resolve
func (h *CaseHandler) Resolve(c *gin.Context) {
	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "invalid request body")
		return
	}
	result, err := h.caseSvc.Resolve(&req)
	if err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.OK(c, result)
}

// List returns a filtered page of cases.
// GET /api/v1/cases
func (h *CaseHandler) List(c *gin.Context) {
	var req dto.CaseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "invalid query parameters")
		return
	}
	items, total, err := h.caseSvc.List(c.Request.Context(), &req)
	if err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// Search matches name or employee id.
// GET /api/v1/cases/search?q=
func (h *CaseHandler) Search(c *gin.Context) {
	found, err := h.caseSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.OK(c, found)
}

// Get returns one case.
// GET /api/v1/cases/:id
func (h *CaseHandler) Get(c *gin.Context) {
	result, err := h.caseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.OK(c, result)
}

// Create stores a new case.
// POST /api/v1/cases
func (h *CaseHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var raw discipline.Record
	if err := c.ShouldBindJSON(&raw); err != nil || raw == nil {
		response.BadRequest(c, codeBadRequest, "invalid request body")
		return
	}
	result, err := h.caseSvc.Create(c.Request.Context(), userID, raw)
	if err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.Created(c, result)
}

// Update merges the body into an existing case.
// PUT /api/v1/cases/:id
func (h *CaseHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var patch discipline.Record
	if err := c.ShouldBindJSON(&patch); err != nil || patch == nil {
		response.BadRequest(c, codeBadRequest, "invalid request body")
		return
	}
	result, err := h.caseSvc.Update(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.OK(c, result)
}

// Delete removes a case.
// DELETE /api/v1/cases/:id
func (h *CaseHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.caseSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.OK(c, nil)
}

// CreateBatch adds and finalizes a whole batch in one call.
// POST /api/v1/cases/batch
func (h *CaseHandler) CreateBatch(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.BatchCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "invalid request body")
		return
	}
	result, err := h.caseSvc.CreateBatch(c.Request.Context(), userID, &req)
	if err != nil {
		writeCaseError(c, err, result)
		return
	}
	response.Created(c, result)
}
