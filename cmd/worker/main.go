package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/costbook/internal/app"
	jobmetrics "github.com/odyssey-erp/costbook/internal/jobs"
	"github.com/odyssey-erp/costbook/internal/platform/blob"
	"github.com/odyssey-erp/costbook/internal/platform/cache"
	"github.com/odyssey-erp/costbook/internal/platform/db"
	"github.com/odyssey-erp/costbook/internal/platform/docstore"
	"github.com/odyssey-erp/costbook/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("process", "worker"))

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	docs, err := docstore.Open(cfg.DocstorePath)
	if err != nil {
		logger.Error("open docstore", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := docs.Close(); err != nil {
			logger.Warn("docstore close", slog.Any("error", err))
		}
	}()

	blobs, err := blob.Open(ctx, cfg.BlobConfig())
	if err != nil {
		logger.Error("open blob store", slog.Any("error", err))
		os.Exit(1)
	}

	services := app.NewServices(cfg, pool, redisClient, docs, logger)
	metrics := jobmetrics.NewMetrics(nil)

	alertJob := jobs.NewAlertScanJob(services.Alerts, logger, metrics)
	revalJob := jobs.NewRevaluationJob(services.Inventory, services.Prices, blobs, logger, metrics)

	alertTask, err := jobs.NewAlertScanTask("cron")
	if err != nil {
		logger.Error("build alert scan task", slog.Any("error", err))
		os.Exit(1)
	}
	revalTask, err := jobs.NewInventoryRevaluationTask(time.Time{})
	if err != nil {
		logger.Error("build revaluation task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAlertScan, Handler: alertJob.Handle},
			{Type: jobs.TaskInventoryRevaluation, Handler: revalJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.AlertScanCron, Task: alertTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.RevaluationCron, Task: revalTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("blob_driver", string(blobs.Driver())))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
