package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"dcms/internal/discipline"
	"dcms/internal/dto"
	"dcms/internal/repository"
)

var (
	ErrBatchNotFound      = errors.New("batch not found or expired")
	ErrBatchEntryNotFound = errors.New("entry not in batch")
)

// BatchService keeps draft batches between requests so several employees
// can be added to one file before it is finalized.
type BatchService interface {
	Start(ctx context.Context, header discipline.Record) (*discipline.BatchState, error)
	Get(ctx context.Context, id string) (*discipline.BatchState, error)
	AddEntry(ctx context.Context, id string, entry discipline.Record) (*discipline.BatchState, error)
	RemoveEntry(ctx context.Context, id, entryID string) (*discipline.BatchState, error)
	Finalize(ctx context.Context, callerID, id string) (*dto.BatchResult, error)
	Discard(ctx context.Context, id string) error
}

type batchService struct {
	repo   *repository.Repository
	engine *discipline.Engine
	logger *zap.Logger
}

// NewBatchService creates a BatchService.
func NewBatchService(repo *repository.Repository, engine *discipline.Engine, logger *zap.Logger) BatchService {
	return &batchService{repo: repo, engine: engine, logger: logger}
}

func (s *batchService) Start(ctx context.Context, header discipline.Record) (*discipline.BatchState, error) {
	if header == nil {
		header = discipline.Record{}
	}
	state := s.engine.NewBatch(header)
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *batchService) Get(ctx context.Context, id string) (*discipline.BatchState, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *batchService) AddEntry(ctx context.Context, id string, entry discipline.Record) (*discipline.BatchState, error) {
	next, err := s.update(ctx, id, func(st *discipline.BatchState) error {
		added, err := s.engine.AddEmployeeToBatch(*st, entry)
		if err != nil {
			return err
		}
		*st = added
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *batchService) RemoveEntry(ctx context.Context, id, entryID string) (*discipline.BatchState, error) {
	next, err := s.update(ctx, id, func(st *discipline.BatchState) error {
		trimmed, removed := s.engine.RemoveFromBatch(*st, entryID)
		if !removed {
			return ErrBatchEntryNotFound
		}
		*st = trimmed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// Finalize persists the draft. On success the draft is deleted. After a
// partial failure the draft keeps only the entries that were not persisted,
// so the call can be retried.
func (s *batchService) Finalize(ctx context.Context, callerID, id string) (*dto.BatchResult, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := finalize(ctx, s.engine, s.repo.Case, state, callerID, s.logger)
	if err != nil {
		var be *discipline.BatchError
		if errors.As(err, &be) {
			persisted := make(map[string]bool, be.Persisted)
			for _, e := range state.Entries[:be.Persisted] {
				persisted[e.ID()] = true
			}
			_, keepErr := s.update(ctx, id, func(st *discipline.BatchState) error {
				kept := st.Entries[:0]
				for _, e := range st.Entries {
					if !persisted[e.ID()] {
						kept = append(kept, e)
					}
				}
				st.Entries = kept
				return nil
			})
			if keepErr != nil {
				s.logger.Warn("keep unpersisted batch entries failed", zap.String("batch_id", id), zap.Error(keepErr))
			}
		}
		return result, err
	}

	if _, err := s.repo.Draft.Delete(ctx, id); err != nil {
		s.logger.Warn("delete finalized draft failed", zap.String("batch_id", id), zap.Error(err))
	}
	return result, nil
}

func (s *batchService) Discard(ctx context.Context, id string) error {
	removed, err := s.repo.Draft.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete draft failed", zap.String("batch_id", id), zap.Error(err))
		return err
	}
	if !removed {
		return ErrBatchNotFound
	}
	return nil
}

// ── Helpers ──

// update runs fn against the stored draft under the repository's
// per-draft serialisation.
func (s *batchService) update(ctx context.Context, id string, fn repository.DraftFunc) (discipline.BatchState, error) {
	state, err := s.repo.Draft.Update(ctx, id, fn)
	if err == nil {
		return state, nil
	}
	var ve *discipline.ValidationError
	switch {
	case errors.Is(err, repository.ErrDraftNotFound):
		return state, ErrBatchNotFound
	case errors.Is(err, ErrBatchEntryNotFound), errors.As(err, &ve):
		return state, err
	}
	s.logger.Error("update draft failed", zap.String("batch_id", id), zap.Error(err))
	return state, err
}

func (s *batchService) load(ctx context.Context, id string) (discipline.BatchState, error) {
	state, err := s.repo.Draft.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return state, ErrBatchNotFound
		}
		s.logger.Error("load draft failed", zap.String("batch_id", id), zap.Error(err))
		return state, err
	}
	return state, nil
}

func (s *batchService) save(ctx context.Context, state discipline.BatchState) error {
	if err := s.repo.Draft.Save(ctx, state); err != nil {
		s.logger.Error("save draft failed", zap.String("batch_id", state.ID), zap.Error(err))
		return err
	}
	return nil
}
