package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dcms/config"
	"dcms/internal/api/handler"
	"dcms/internal/api/router"
	"dcms/internal/discipline"
	"dcms/internal/model"
	"dcms/internal/repository"
	"dcms/internal/service"
	"dcms/pkg/database"
	"dcms/pkg/filestore"
	"dcms/pkg/jwt"
	applogger "dcms/pkg/logger"
	"dcms/pkg/redis"
)

func main() {
	// 1. Config
	cfg, err := config.Load(os.Getenv("DCMS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. Redis is optional: without it drafts live in memory and the
	// token blacklist and login rate limit are off.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, running without it", zap.Error(err))
			rdb = nil
		}
	}
	var drafts repository.BatchDraftRepository
	if rdb != nil {
		drafts = repository.NewRedisDraftRepo(rdb, cfg.Cases.DraftTTL)
	} else {
		drafts = repository.NewMemoryDraftRepo(cfg.Cases.DraftTTL)
	}

	// 4. Storage
	repo, db, err := openRepository(cfg, drafts, logger)
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}

	// 5. Engine. A broken schema, catalog or gate table stops startup.
	engine, err := discipline.NewEngine()
	if err != nil {
		logger.Fatal("build discipline engine", zap.Error(err))
	}

	// 6. Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := service.NewService(cfg, repo, engine, jwtMgr, rdb, logger)
	if err := svc.Auth.SeedAdmin(context.Background()); err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}
	h := handler.NewHandler(svc)

	r := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if db != nil {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}

// openRepository opens the configured store. db is nil for the json driver.
func openRepository(cfg *config.Config, drafts repository.BatchDraftRepository, logger *zap.Logger) (*repository.Repository, *gorm.DB, error) {
	switch cfg.Storage.Driver {
	case config.DriverJSON:
		store, err := filestore.New(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("json store opened", zap.String("dir", store.Dir()))
		return repository.NewFileRepository(store, drafts), nil, nil

	case config.DriverSQLite:
		db, err := database.NewDB(&cfg.Storage, &cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := database.AutoMigrate(db, &model.User{}, &model.CaseRecord{}); err != nil {
			return nil, nil, err
		}
		return repository.NewRepository(db, drafts), db, nil

	case config.DriverPostgres:
		db, err := database.NewDB(&cfg.Storage, &cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("get sql.DB: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return nil, nil, err
		}
		return repository.NewRepository(db, drafts), db, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
