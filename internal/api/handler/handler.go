package handler

import "dcms/internal/service"

// Handler aggregates every handler.
type Handler struct {
	Auth   *AuthHandler
	User   *UserHandler
	Case   *CaseHandler
	Batch  *BatchHandler
	Report *ReportHandler
	Export *ExportHandler
}

// NewHandler creates the handlers.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		User:   NewUserHandler(svc.User),
		Case:   NewCaseHandler(svc.Case),
		Batch:  NewBatchHandler(svc.Batch),
		Report: NewReportHandler(svc.Report),
		Export: NewExportHandler(svc.Export, svc.Import),
	}
}
