package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dcms/internal/discipline"
	"dcms/internal/dto"
	"dcms/internal/service"
	"dcms/pkg/response"
)

// ── Business codes ──
//
// 10xxx common, 11xxx auth, 12xxx cases, 13xxx batches, 14xxx export/import.

const (
	codeBadRequest = 10001

	codeInvalidCredentials = 11001
	codeUsernameTaken      = 11002
	codeEmailTaken         = 11003
	codeInvalidToken       = 11004
	codeUserNotFound       = 11005

	codeValidation   = 12001
	codeCaseNotFound = 12002
	codeUnknownField = 12003

	codeBatchNotFound   = 13001
	codeEntryNotFound   = 13002
	codeBatchEmpty      = 13003
	codeBatchIncomplete = 13004

	codeExportEmpty     = 14001
	codeImportBadFile   = 14101
	codeImportNoData    = 14102
	codeImportTooLarge  = 14103
	codeImportBadHeader = 14104
)

// batchFailure is the details body of a partially persisted batch.
type batchFailure struct {
	Persisted int                 `json:"persisted"`
	Remaining int                 `json:"remaining"`
	FailedID  string              `json:"failed_id"`
	Records   []discipline.Record `json:"records"`
}

// writeCaseError maps case and batch errors to responses. Anything it does
// not recognise becomes a 500.
func writeCaseError(c *gin.Context, err error, result *dto.BatchResult) {
	var (
		ve *discipline.ValidationError
		be *discipline.BatchError
	)
	switch {
	case errors.As(err, &ve):
		response.Unprocessable(c, codeValidation, err.Error(), ve)
	case errors.As(err, &be):
		details := batchFailure{Persisted: be.Persisted, Remaining: be.Remaining(), FailedID: be.FailedID}
		if result != nil {
			details.Records = result.Records
		}
		response.ErrorWithDetails(c, http.StatusInternalServerError, codeBatchIncomplete, be.Error(), details)
	case errors.Is(err, discipline.ErrNotFound):
		response.NotFound(c, codeCaseNotFound, "case not found")
	case errors.Is(err, discipline.ErrUnknownField):
		response.BadRequest(c, codeUnknownField, err.Error())
	case errors.Is(err, discipline.ErrEmptyBatch):
		response.Unprocessable(c, codeBatchEmpty, "batch has no entries", nil)
	case errors.Is(err, service.ErrBatchNotFound):
		response.NotFound(c, codeBatchNotFound, "batch not found or expired")
	case errors.Is(err, service.ErrBatchEntryNotFound):
		response.NotFound(c, codeEntryNotFound, "entry not in batch")
	default:
		c.Error(err)
		response.InternalError(c)
	}
}
