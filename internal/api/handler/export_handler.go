package handler

import (
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"dcms/internal/discipline"
	"dcms/internal/service"
	"dcms/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler spreadsheet and calendar transfer endpoints.
type ExportHandler struct {
	exportSvc service.ExportService
	importSvc service.ImportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService, importSvc service.ImportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, importSvc: importSvc}
}

// ExportCases downloads the filtered cases as xlsx.
// GET /api/v1/export/cases
func (h *ExportHandler) ExportCases(c *gin.Context) {
	var filter discipline.CaseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, codeBadRequest, "invalid query parameters")
		return
	}

	buf, filename, err := h.exportSvc.ExportCases(c.Request.Context(), filter)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCalendar downloads case milestones as an iCalendar feed.
// GET /api/v1/export/calendar
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	var filter discipline.CaseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, codeBadRequest, "invalid query parameters")
		return
	}

	data, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), filter)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, icsContentType, data)
}

// ImportCases creates cases from an uploaded xlsx (form field "file").
// POST /api/v1/import/cases
func (h *ExportHandler) ImportCases(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeBadRequest, "file is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		response.BadRequest(c, codeImportBadFile, "only .xlsx files are accepted")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, codeImportBadFile, "cannot read the uploaded file")
		return
	}
	defer f.Close()

	result, err := h.importSvc.ImportCases(c.Request.Context(), userID, f)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportBadFile):
			response.BadRequest(c, codeImportBadFile, err.Error())
		case errors.Is(err, service.ErrImportNoData):
			response.BadRequest(c, codeImportNoData, err.Error())
		case errors.Is(err, service.ErrImportTooManyRows):
			response.BadRequest(c, codeImportTooLarge, err.Error())
		case errors.Is(err, service.ErrImportBadHeader):
			response.BadRequest(c, codeImportBadHeader, err.Error())
		default:
			c.Error(err)
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoCases):
		response.NotFound(c, codeExportEmpty, "no cases match the filter")
	default:
		c.Error(err)
		response.InternalError(c)
	}
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}
