package handler

import (
	"github.com/gin-gonic/gin"

	"dcms/internal/service"
	"dcms/pkg/response"
)

// ReportHandler dashboard endpoints.
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Summary GET /api/v1/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	sum, err := h.reportSvc.Summary(c.Request.Context())
	if err != nil {
		c.Error(err)
		response.InternalError(c)
		return
	}
	response.OK(c, sum)
}

// Buckets GET /api/v1/reports/buckets
func (h *ReportHandler) Buckets(c *gin.Context) {
	b, err := h.reportSvc.Buckets(c.Request.Context())
	if err != nil {
		c.Error(err)
		response.InternalError(c)
		return
	}
	response.OK(c, b)
}
