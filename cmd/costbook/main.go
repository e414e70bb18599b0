package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/costbook/cmd/costbook/cli"
	"github.com/odyssey-erp/costbook/internal/alerts"
	"github.com/odyssey-erp/costbook/internal/app"
	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/costing"
	"github.com/odyssey-erp/costbook/internal/inventory"
	"github.com/odyssey-erp/costbook/internal/observability"
	"github.com/odyssey-erp/costbook/internal/platform/cache"
	"github.com/odyssey-erp/costbook/internal/platform/db"
	"github.com/odyssey-erp/costbook/internal/platform/docstore"
	"github.com/odyssey-erp/costbook/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 {
		os.Exit(runCommand(ctx, cfg, logger, os.Args[1], os.Args[2:]))
	}
	if err := serve(ctx, stop, cfg, logger); err != nil {
		logger.Error("serve", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, stop context.CancelFunc, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	docs, err := docstore.Open(cfg.DocstorePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := docs.Close(); err != nil {
			logger.Warn("docstore close", slog.Any("error", err))
		}
	}()

	services := app.NewServices(cfg, pool, redisClient, docs, logger)
	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalog.NewHandler(logger, services.Catalog),
		CostingHandler:   costing.NewHandler(logger, services.Costing),
		InventoryHandler: inventory.NewHandler(logger, services.Inventory),
		AlertsHandler:    alerts.NewHandler(logger, services.Alerts),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
		Ready:            readiness(pool, redisClient, docs),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}

func readiness(pool *pgxpool.Pool, redisClient *redis.Client, docs *docstore.Store) func(*http.Request) error {
	return func(r *http.Request) error {
		if err := pool.Ping(r.Context()); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := docs.Ping(r.Context()); err != nil {
			return fmt.Errorf("docstore: %w", err)
		}
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}

func runCommand(ctx context.Context, cfg *app.Config, logger *slog.Logger, name string, args []string) int {
	switch name {
	case "report":
		fs := flag.NewFlagSet("report", flag.ContinueOnError)
		jsonOut := fs.Bool("json", false, "print the analysis as JSON")
		lang := fs.String("lang", "en", "BCP 47 language tag used for number formatting")
		if err := fs.Parse(args); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "usage: costbook report [--json] [--lang tag] <recipe-id>")
			return 2
		}
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "report: connect postgres: %v\n", err)
			return 1
		}
		defer pool.Close()
		catalogRepo := catalog.NewRepository(pool)
		analyzer := costing.NewService(costing.NewRepository(pool), catalogRepo, logger)
		return cli.NewReportCLI(analyzer).Run(ctx, cli.ReportOptions{
			RecipeID:   fs.Arg(0),
			JSONOutput: *jsonOut,
			Lang:       *lang,
		})
	case "jobs":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "usage: costbook jobs trigger <task> | costbook jobs stats")
			return 2
		}
		jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
			return 1
		}
		defer func() { _ = jobsCLI.Close() }()
		return jobsCLI.Run(ctx, args, os.Stdout, os.Stderr)
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
	return 2
}
