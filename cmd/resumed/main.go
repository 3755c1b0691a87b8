package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/applytrack/resume-parser/internal/async"
	"github.com/applytrack/resume-parser/internal/cache"
	"github.com/applytrack/resume-parser/internal/common"
	"github.com/applytrack/resume-parser/internal/extract"
	"github.com/applytrack/resume-parser/internal/llm/openai"
	"github.com/applytrack/resume-parser/internal/parsing"
	"github.com/applytrack/resume-parser/internal/pipeline"
	repo "github.com/applytrack/resume-parser/internal/repository"
	"github.com/applytrack/resume-parser/internal/server"
	"github.com/applytrack/resume-parser/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	jobsRepo := repo.NewParsingJobRepository(pool, logger)
	profilesRepo := repo.NewProfileRepository(pool, logger)

	var store storage.ObjectStore
	if cfg.Storage.BaseURL != "" {
		store = storage.NewBucketStore(storage.BucketConfig{
			BaseURL: cfg.Storage.BaseURL,
			APIKey:  cfg.Storage.APIKey,
			Bucket:  cfg.Storage.Bucket,
			Timeout: cfg.Storage.Timeout,
		}, logger)
	} else {
		logger.Warn("no storage base url configured, serving resumes from local directory", "dir", cfg.Storage.LocalDir)
		store = storage.NewFSStore(cfg.Storage.LocalDir)
	}

	extractor := extract.NewExtractor(extract.Config{
		Pdftotext: cfg.Extract.Pdftotext,
		TempDir:   cfg.Extract.TempDir,
	}, logger)

	parser := openai.NewClient(openai.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         cfg.LLM.Timeout,
		LenientOptional: true,
	}, logger)

	var invalidator cache.Invalidator = cache.Noop{}
	if cfg.Redis.Addr != "" {
		ri, err := cache.NewRedisInvalidator(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			Channel:  cfg.Redis.Channel,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer ri.Close()
		invalidator = ri
	}

	processor := pipeline.NewProcessor(logger, jobsRepo, profilesRepo, store, extractor, parser, invalidator)

	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
	)

	// pick up pending rows and stale processing rows from a previous run,
	// then keep sweeping so orphaned rows never wait for a restart
	if err := async.RecoverJobs(ctx, jobsRepo, queue, cfg.Queue.StaleAfter, logger); err != nil {
		logger.Error("job recovery failed", "error", err)
	}
	go async.RecoverLoop(ctx, jobsRepo, queue, cfg.Queue.StaleAfter, cfg.Queue.SweepInterval, logger)

	svc := parsing.NewService(jobsRepo, profilesRepo, queue, logger)

	httpLog, err := zap.NewProduction()
	if err != nil {
		logger.Error("failed to build http logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = httpLog.Sync() }()

	tokens := server.NewTokenService(cfg.Server.JWTSecret)
	handler := server.NewParseHandler(svc, httpLog)
	router := server.NewRouter(handler, tokens, httpLog)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("bye")
}
