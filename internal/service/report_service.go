package service

import (
	"context"

	"go.uber.org/zap"

	"dcms/internal/discipline"
	"dcms/internal/repository"
)

// ReportService dashboard counts.
type ReportService interface {
	Summary(ctx context.Context) (*discipline.Summary, error)
	Buckets(ctx context.Context) (*discipline.Buckets, error)
}

type reportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService creates a ReportService.
func NewReportService(repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) Summary(ctx context.Context) (*discipline.Summary, error) {
	records, err := s.repo.Case.List(ctx)
	if err != nil {
		s.logger.Error("load cases for summary failed", zap.Error(err))
		return nil, err
	}
	sum := discipline.Summarize(records)
	return &sum, nil
}

func (s *reportService) Buckets(ctx context.Context) (*discipline.Buckets, error) {
	records, err := s.repo.Case.List(ctx)
	if err != nil {
		s.logger.Error("load cases for buckets failed", zap.Error(err))
		return nil, err
	}
	b := discipline.BucketCounts(records)
	return &b, nil
}
