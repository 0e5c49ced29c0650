package service

import (
	"go.uber.org/zap"

	"dcms/config"
	"dcms/internal/discipline"
	"dcms/internal/repository"
	"dcms/pkg/jwt"
	"dcms/pkg/redis"
)

// Service aggregates every service.
type Service struct {
	Auth   AuthService
	User   UserService
	Case   CaseService
	Batch  BatchService
	Report ReportService
	Export ExportService
	Import ImportService
}

// NewService wires the services. rdb may be nil when Redis is disabled.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	engine *discipline.Engine,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:   NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:   NewUserService(repo, logger),
		Case:   NewCaseService(&cfg.Cases, repo, engine, logger),
		Batch:  NewBatchService(repo, engine, logger),
		Report: NewReportService(repo, logger),
		Export: NewExportService(repo, engine, logger),
		Import: NewImportService(repo, engine, logger),
	}
}
