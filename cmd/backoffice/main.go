package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/sobitas/backoffice/internal/app"
	"github.com/sobitas/backoffice/internal/billing"
	"github.com/sobitas/backoffice/internal/catalog"
	"github.com/sobitas/backoffice/internal/clients"
	"github.com/sobitas/backoffice/internal/observability"
	"github.com/sobitas/backoffice/internal/platform/cache"
	"github.com/sobitas/backoffice/internal/platform/db"
	"github.com/sobitas/backoffice/internal/settings"
	"github.com/sobitas/backoffice/internal/stock"
	"github.com/sobitas/backoffice/jobs"
	"github.com/sobitas/backoffice/report"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, tax rate cache disabled", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	dispatcher := jobs.NewDispatcher(jobClient, logger)

	settingsRepo := settings.NewRepository(pool)
	taxRates := settings.NewTaxRates(settingsRepo, redisClient, 5*time.Minute, logger)
	messages := settings.NewMessages(settingsRepo, logger)

	metrics := observability.NewMetrics()

	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(billingRepo, taxRates, messages, dispatcher, metrics, logger, cfg.AdminEmail)

	reportClient := report.NewClient(cfg.GotenbergURL)
	renderer, err := report.NewRenderer(reportClient, settingsRepo)
	if err != nil {
		logger.Error("init document renderer", slog.Any("error", err))
		os.Exit(1)
	}
	billingHandler := billing.NewHandler(logger, billingService, renderer)

	clientsRepo := clients.NewRepository(pool)
	clientsService := clients.NewService(clientsRepo, dispatcher, messages, logger)
	clientsHandler := clients.NewHandler(logger, clientsService)

	catalogHandler := catalog.NewHandler(logger, catalog.NewRepository(pool))
	stockHandler := stock.NewHandler(logger, stock.NewRepository(pool))
	reportHandler := report.NewHandler(reportClient, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		BillingHandler: billingHandler,
		ClientsHandler: clientsHandler,
		CatalogHandler: catalogHandler,
		StockHandler:   stockHandler,
		ReportHandler:  reportHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
