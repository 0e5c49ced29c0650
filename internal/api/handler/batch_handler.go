package handler

import (
	"github.com/gin-gonic/gin"

	"dcms/internal/discipline"
	"dcms/internal/dto"
	"dcms/internal/service"
	"dcms/pkg/response"
)

// BatchHandler draft batch endpoints.
type BatchHandler struct {
	batchSvc service.BatchService
}

// NewBatchHandler creates a BatchHandler.
func NewBatchHandler(batchSvc service.BatchService) *BatchHandler {
	return &BatchHandler{batchSvc: batchSvc}
}

// Start opens a draft from the file-level fields in the body.
// POST /api/v1/batches
func (h *BatchHandler) Start(c *gin.Context) {
	var header discipline.Record
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&header); err != nil {
			response.BadRequest(c, codeBadRequest, "invalid request body")
			return
		}
	}
	state, err := h.batchSvc.Start(c.Request.Context(), header)
	if err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.Created(c, state)
}

// Get returns the draft.
// GET /api/v1/batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	state, err := h.batchSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.OK(c, state)
}

// AddEntry validates one employee and adds it to the draft.
// POST /api/v1/batches/:id/entries
func (h *BatchHandler) AddEntry(c *gin.Context) {
	var req dto.BatchEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "invalid request body")
		return
	}
	state, err := h.batchSvc.AddEntry(c.Request.Context(), c.Param("id"), req.Entry)
	if err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.OK(c, state)
}

// RemoveEntry drops one entry from the draft.
// DELETE /api/v1/batches/:id/entries/:entryId
func (h *BatchHandler) RemoveEntry(c *gin.Context) {
	state, err := h.batchSvc.RemoveEntry(c.Request.Context(), c.Param("id"), c.Param("entryId"))
	if err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.OK(c, state)
}

// Finalize persists the draft.
// POST /api/v1/batches/:id/finalize
func (h *BatchHandler) Finalize(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	result, err := h.batchSvc.Finalize(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeCaseError(c, err, result)
		return
	}
	response.Created(c, result)
}

// Discard deletes the draft without persisting it.
// DELETE /api/v1/batches/:id
func (h *BatchHandler) Discard(c *gin.Context) {
	if err := h.batchSvc.Discard(c.Request.Context(), c.Param("id")); err != nil {
		writeCaseError(c, err, nil)
		return
	}
	response.OK(c, nil)
}
