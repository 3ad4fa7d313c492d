package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facturio/invoice-ingest/internal/analyze"
	"github.com/facturio/invoice-ingest/internal/archive"
	"github.com/facturio/invoice-ingest/internal/async"
	"github.com/facturio/invoice-ingest/internal/blob"
	"github.com/facturio/invoice-ingest/internal/common"
	"github.com/facturio/invoice-ingest/internal/ingest"
	"github.com/facturio/invoice-ingest/internal/pipeline"
	repo "github.com/facturio/invoice-ingest/internal/repository"
)

// invoiced watches the configured inbox directories and runs every new
// document through the extraction pipeline.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if len(cfg.Ingest.WatchDirs) == 0 {
		logger.Error("WATCH_DIRS is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	if err := repo.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	store, err := blob.NewMinioStore(blob.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		BaseURL:   cfg.Storage.BaseURL,
	}, logger)
	if err != nil {
		logger.Error("creating object store", "error", err)
		os.Exit(1)
	}

	analyzer := analyze.NewClient(analyze.ClientConfig{
		Endpoint:     cfg.Analyzer.Endpoint,
		APIKey:       cfg.Analyzer.APIKey,
		ModelID:      cfg.Analyzer.ModelID,
		PollInterval: cfg.Analyzer.PollInterval,
		Timeout:      cfg.Analyzer.Timeout,
	}, logger)

	archiver := archive.NewArchiver(store, cfg.Pipeline.ArchiveContainer, logger)
	invoices := repo.NewInvoiceRepository(pool, logger)

	proc := pipeline.NewProcessor(logger, analyzer, archiver, invoices, store.BaseURL(), pipeline.Config{
		SourceContainer: cfg.Pipeline.SourceContainer,
		DefaultSiteID:   cfg.Pipeline.DefaultSiteID,
		DefaultStatusID: cfg.Pipeline.DefaultStatusID,
		CreatedBy:       cfg.Pipeline.CreatedBy,
	})

	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Ingest.Workers),
		async.WithQueueSize(cfg.Ingest.QueueSize),
		async.WithProcessTimeout(cfg.Ingest.JobTimeout),
	)

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Ingest.WatchDirs,
		InitialScan: cfg.Ingest.InitialScan,
		Debounce:    cfg.Ingest.Debounce,
	}, logger)
	if err != nil {
		logger.Error("starting watcher", "error", err)
		os.Exit(1)
	}

	logger.Info("invoiced started", "watch_dirs", cfg.Ingest.WatchDirs, "workers", cfg.Ingest.Workers)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case path, ok := <-events:
			if !ok {
				break loop
			}
			if err := queue.Enqueue(ctx, async.Job{Path: path}); err != nil {
				logger.Error("failed to enqueue event", "path", path, "error", err)
			}
		case werr, ok := <-watchErrs:
			if ok && werr != nil {
				logger.Error("watcher error", "error", werr)
			}
		}
	}

	logger.Info("shutting down...")
	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)
	logger.Info("stopped")
}
