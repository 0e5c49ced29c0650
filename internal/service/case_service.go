package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"dcms/config"
	"dcms/internal/discipline"
	"dcms/internal/dto"
	"dcms/internal/repository"
)

// CaseService is the case workflow over the discipline engine and the case
// repository. callerID is the authenticated user and is only logged.
type CaseService interface {
	Schema() *dto.CaseSchemaResponse
	Resolve(req *dto.ResolveRequest) (*dto.ResolveResponse, error)
	List(ctx context.Context, req *dto.CaseListRequest) ([]discipline.Record, int64, error)
	Search(ctx context.Context, query string) ([]discipline.Record, error)
	Get(ctx context.Context, id string) (*dto.CaseResponse, error)
	Create(ctx context.Context, callerID string, raw discipline.Record) (*dto.CaseResponse, error)
	Update(ctx context.Context, callerID, id string, patch discipline.Record) (*dto.CaseResponse, error)
	Delete(ctx context.Context, callerID, id string) error
	CreateBatch(ctx context.Context, callerID string, req *dto.BatchCreateRequest) (*dto.BatchResult, error)
}

type caseService struct {
	cfg    *config.CasesConfig
	repo   *repository.Repository
	engine *discipline.Engine
	logger *zap.Logger
}

// NewCaseService creates a CaseService.
func NewCaseService(cfg *config.CasesConfig, repo *repository.Repository, engine *discipline.Engine, logger *zap.Logger) CaseService {
	return &caseService{cfg: cfg, repo: repo, engine: engine, logger: logger}
}

func (s *caseService) Schema() *dto.CaseSchemaResponse {
	return &dto.CaseSchemaResponse{
		Sections: discipline.Sections,
		Fields:   s.engine.Schema().Fields(),
		Catalog:  s.engine.Catalog(),
		Gates:    s.engine.Gates(),
	}
}

// Resolve runs one form-assist step: optional edit, optional confirmation,
// then gate and visibility resolution. Errors are reported for the chosen
// profile without failing the call.
func (s *caseService) Resolve(req *dto.ResolveRequest) (*dto.ResolveResponse, error) {
	rec := req.Record
	if rec == nil {
		rec = discipline.Record{}
	}

	var err error
	if req.Field != "" {
		if rec, err = s.engine.ApplyEdit(rec, req.Field, req.Value); err != nil {
			return nil, err
		}
	}
	if req.Confirm {
		if rec, err = s.engine.ConfirmCaseType(rec); err != nil {
			return nil, err
		}
	}
	rec = s.engine.Resolve(s.engine.Normalize(rec))

	resp := &dto.ResolveResponse{
		Record:          rec,
		VisibleSections: s.engine.VisibleSections(rec),
		DetailsUnlocked: s.engine.DetailsUnlocked(rec),
	}
	if req.Profile != "" {
		if errs := s.engine.Validate(rec, s.profileFor(req.Profile)); len(errs) > 0 {
			resp.Errors = errs
		}
	}
	return resp, nil
}

func (s *caseService) List(ctx context.Context, req *dto.CaseListRequest) ([]discipline.Record, int64, error) {
	all, err := s.repo.Case.List(ctx)
	if err != nil {
		s.logger.Error("list cases failed", zap.Error(err))
		return nil, 0, err
	}
	matched := discipline.Filter(all, req.CaseFilter)
	total := int64(len(matched))

	size := req.GetPageSize()
	if s.cfg.PageSizeMax > 0 && size > s.cfg.PageSizeMax {
		size = s.cfg.PageSizeMax
	}
	start := (req.GetPage() - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]discipline.Record, 0, end-start)
	for _, rec := range matched[start:end] {
		items = append(items, s.engine.Present(rec))
	}
	return items, total, nil
}

func (s *caseService) Search(ctx context.Context, query string) ([]discipline.Record, error) {
	all, err := s.repo.Case.List(ctx)
	if err != nil {
		s.logger.Error("search cases failed", zap.Error(err))
		return nil, err
	}
	found := discipline.SearchByNameOrID(all, query)
	for i := range found {
		found[i] = s.engine.Present(found[i])
	}
	return found, nil
}

func (s *caseService) Get(ctx context.Context, id string) (*dto.CaseResponse, error) {
	rec, err := s.repo.Case.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, discipline.ErrNotFound) {
			s.logger.Error("get case failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.view(rec), nil
}

func (s *caseService) Create(ctx context.Context, callerID string, raw discipline.Record) (*dto.CaseResponse, error) {
	if err := s.engine.Check(s.engine.Normalize(raw), discipline.ProfileEntry); err != nil {
		return nil, err
	}
	rec := s.engine.CreateEntry(raw)
	if err := s.repo.Case.Append(ctx, rec); err != nil {
		s.logger.Error("append case failed", zap.String("caller", callerID), zap.String("id", rec.ID()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("case created", zap.String("caller", callerID), zap.String("id", rec.ID()))
	return s.view(rec), nil
}

func (s *caseService) Update(ctx context.Context, callerID, id string, patch discipline.Record) (*dto.CaseResponse, error) {
	existing, err := s.repo.Case.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, discipline.ErrNotFound) {
			s.logger.Error("get case failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	merged := s.engine.UpdateEntry(existing, patch)
	if err := s.engine.Check(merged, s.editProfile()); err != nil {
		return nil, err
	}

	saved, err := s.repo.Case.Replace(ctx, id, merged)
	if err != nil {
		if !errors.Is(err, discipline.ErrNotFound) {
			s.logger.Error("replace case failed", zap.String("caller", callerID), zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("case updated", zap.String("caller", callerID), zap.String("id", id))
	return s.view(saved), nil
}

func (s *caseService) Delete(ctx context.Context, callerID, id string) error {
	removed, err := s.repo.Case.Remove(ctx, id)
	if err != nil {
		s.logger.Error("remove case failed", zap.String("caller", callerID), zap.String("id", id), zap.Error(err))
		return err
	}
	if !removed {
		return &discipline.NotFoundError{ID: id}
	}
	s.logger.Info("case removed", zap.String("caller", callerID), zap.String("id", id))
	return nil
}

// CreateBatch adds every entry to a fresh batch and finalizes it. An entry
// that fails validation aborts the call before anything is persisted.
func (s *caseService) CreateBatch(ctx context.Context, callerID string, req *dto.BatchCreateRequest) (*dto.BatchResult, error) {
	state := s.engine.NewBatch(req.Header)
	for i, entry := range req.Entries {
		next, err := s.engine.AddEmployeeToBatch(state, entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		state = next
	}
	return finalize(ctx, s.engine, s.repo.Case, state, callerID, s.logger)
}

// ── Helpers ──

func (s *caseService) editProfile() discipline.Profile {
	if s.cfg.StrictEditValidation {
		return discipline.ProfileLegacyEdit
	}
	return discipline.ProfileEdit
}

func (s *caseService) profileFor(name string) discipline.Profile {
	if name == discipline.ProfileEntry.String() {
		return discipline.ProfileEntry
	}
	return s.editProfile()
}

func (s *caseService) view(rec discipline.Record) *dto.CaseResponse {
	out := s.engine.Present(rec)
	return &dto.CaseResponse{
		Record:          out,
		VisibleSections: s.engine.VisibleSections(out),
	}
}

// finalize persists a batch and logs the outcome. On a partial failure the
// persisted records are returned together with the *discipline.BatchError.
func finalize(ctx context.Context, engine *discipline.Engine, app discipline.Appender, state discipline.BatchState, callerID string, logger *zap.Logger) (*dto.BatchResult, error) {
	persisted, err := engine.FinalizeBatch(ctx, state, app)
	result := &dto.BatchResult{Persisted: len(persisted), Records: persisted}
	if err != nil {
		var be *discipline.BatchError
		if errors.As(err, &be) {
			logger.Error("batch partially persisted",
				zap.String("caller", callerID),
				zap.String("batch_id", state.ID),
				zap.Int("persisted", be.Persisted),
				zap.Int("total", be.Total),
				zap.String("failed_id", be.FailedID),
				zap.Error(be.Err),
			)
			return result, err
		}
		return nil, err
	}
	logger.Info("batch persisted",
		zap.String("caller", callerID),
		zap.String("batch_id", state.ID),
		zap.Int("count", len(persisted)),
	)
	return result, nil
}
