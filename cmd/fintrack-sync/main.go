// Command fintrack-sync mirrors posting events into a Google spreadsheet.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

const (
	categoryRefreshInterval = 24 * time.Hour
	dedupWindow             = time.Hour
	dedupSize               = 4096
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Failed to load configuration", applog.FieldError, err)
		os.Exit(1)
	}

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.Log.Level),
		Component: applog.ComponentWorker,
		Format:    cfg.Log.Format,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)

	if err := cfg.ValidateSync(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting fintrack-sync", applog.FieldOperation, applog.OpStartup)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// The worker consumes; it never publishes.
	backendCfg.AMQPURL = ""
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer result.Cleanup()

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		ExpensesSheet:   cfg.Sheets.ExpensesSheet,
		IncomeSheet:     cfg.Sheets.IncomeSheet,
		CategoriesSheet: cfg.Sheets.CategoriesSheet,
		CredentialsFile: cfg.Sheets.CredentialsFile,
		CredentialsJSON: cfg.Sheets.CredentialsJSON,
		WritesPerMinute: cfg.Sheets.WritesPerMinute,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.Sheets.SpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
	if err != nil {
		return err
	}
	defer amqpClient.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.Sheets.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.Sheets.MetricsAddr, reg, logger)
	}

	recent := cache.NewLRUCache[string](dedupSize, dedupWindow)
	syncWorker := worker.NewSyncWorker(sheetsClient, sheetsClient, result.Store, logger).
		WithDedup(recent).
		WithMetrics(worker.NewMetrics(reg))
	go cache.NewJanitor(recent).Run(ctx, dedupWindow/4, func(removed int) {
		if removed > 0 {
			logger.Debug("Expired dedup entries", applog.FieldCount, removed)
		}
	})

	// Category sync failures are not fatal: postings still flow.
	if _, err := syncWorker.SyncCategories(ctx); err != nil {
		logger.Error("Failed to sync categories", applog.FieldError, err)
	}

	go func() {
		ticker := time.NewTicker(categoryRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := syncWorker.SyncCategories(ctx); err != nil {
					logger.Error("Periodic category refresh failed", applog.FieldError, err)
				}
			}
		}
	}()

	err = amqpClient.ConsumePostings(ctx, syncWorker.HandlePosting)
	logger.Info("Shutting down worker...", applog.FieldOperation, applog.OpShutdown)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serveMetrics exposes reg on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *applog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", applog.FieldError, err)
	}
}
