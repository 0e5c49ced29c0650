package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dcms/internal/discipline"
	"dcms/internal/dto"
	"dcms/internal/repository"
)

const maxImportRows = 1000

var (
	ErrImportBadFile     = errors.New("cannot read the spreadsheet")
	ErrImportNoData      = errors.New("spreadsheet has no data rows (the first row is the header)")
	ErrImportTooManyRows = fmt.Errorf("spreadsheet has more than %d data rows", maxImportRows)
	ErrImportBadHeader   = errors.New("header row has no recognised case columns")
)

// ImportService bulk-creates cases from a spreadsheet.
type ImportService interface {
	// ImportCases creates one case per data row of the first sheet. Rows
	// are independent: a bad row is reported and skipped.
	ImportCases(ctx context.Context, callerID string, r io.Reader) (*dto.ImportCaseResponse, error)
}

type importService struct {
	repo   *repository.Repository
	engine *discipline.Engine
	logger *zap.Logger
}

// NewImportService creates an ImportService.
func NewImportService(repo *repository.Repository, engine *discipline.Engine, logger *zap.Logger) ImportService {
	return &importService{repo: repo, engine: engine, logger: logger}
}

// importRow is one parsed data row. Row is the 1-based sheet row.
type importRow struct {
	Row    int
	Record discipline.Record
}

func (s *importService) ImportCases(ctx context.Context, callerID string, r io.Reader) (*dto.ImportCaseResponse, error) {
	rows, err := s.parse(r)
	if err != nil {
		return nil, err
	}

	resp := &dto.ImportCaseResponse{Total: len(rows)}
	for _, row := range rows {
		if err := s.engine.Check(s.engine.Normalize(row.Record), discipline.ProfileEntry); err != nil {
			resp.Failed++
			item := dto.ImportCaseError{Row: row.Row, Reason: err.Error()}
			var ve *discipline.ValidationError
			if errors.As(err, &ve) {
				item.Fields = ve.Fields
			}
			resp.Errors = append(resp.Errors, item)
			continue
		}

		rec := s.engine.CreateEntry(row.Record)
		if err := s.repo.Case.Append(ctx, rec); err != nil {
			s.logger.Error("import row append failed", zap.Int("row", row.Row), zap.Error(err))
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportCaseError{Row: row.Row, Reason: "could not be saved"})
			continue
		}
		resp.Success++
		resp.IDs = append(resp.IDs, rec.ID())
	}

	s.logger.Info("cases imported",
		zap.String("caller", callerID),
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// parse reads the first sheet. Header cells match a field key, alias or
// label, case-insensitively; other columns are kept under their trimmed
// header text so legacy keys such as serviceStatus survive. Blank rows are
// skipped.
func (s *importService) parse(r io.Reader) ([]importRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	sheetRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	if len(sheetRows) < 2 {
		return nil, ErrImportNoData
	}

	columns, known := s.headerIndex(sheetRows[0])
	if known == 0 {
		return nil, ErrImportBadHeader
	}

	var rows []importRow
	for i := 1; i < len(sheetRows); i++ {
		cells := sheetRows[i]
		rec := discipline.Record{}
		for idx, key := range columns {
			if idx >= len(cells) {
				continue
			}
			if v := strings.TrimSpace(cells[idx]); v != "" {
				rec[key] = v
			}
		}
		if len(rec) == 0 {
			continue
		}
		rows = append(rows, importRow{Row: i + 1, Record: rec})
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// headerIndex maps column index to record key and counts the columns that
// matched a schema field. The export's bookkeeping columns are dropped.
func (s *importService) headerIndex(header []string) (map[int]string, int) {
	byName := map[string]string{}
	for _, f := range s.engine.Schema().Fields() {
		for _, name := range []string{f.Key, f.Alias, f.Label} {
			if name == "" {
				continue
			}
			if _, taken := byName[strings.ToLower(name)]; !taken {
				byName[strings.ToLower(name)] = f.Key
			}
		}
	}
	skip := map[string]bool{}
	for _, name := range []string{colID, colCreated, colUpdated, discipline.KeyID, discipline.KeyCreatedAt, discipline.KeyUpdatedAt} {
		skip[strings.ToLower(name)] = true
	}

	idx := map[int]string{}
	seen := map[string]bool{}
	known := 0
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || skip[strings.ToLower(name)] {
			continue
		}
		key, ok := byName[strings.ToLower(name)]
		if !ok {
			key = name
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		idx[i] = key
		if ok {
			known++
		}
	}
	return idx, known
}
