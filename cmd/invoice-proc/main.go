package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/facturio/invoice-ingest/internal/analyze"
	"github.com/facturio/invoice-ingest/internal/archive"
	"github.com/facturio/invoice-ingest/internal/blob"
	"github.com/facturio/invoice-ingest/internal/common"
	"github.com/facturio/invoice-ingest/internal/pipeline"
	repo "github.com/facturio/invoice-ingest/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// invoice-proc runs the pipeline once for each file given on the command
// line. Useful for re-processing a document without the watcher.
func main() {
	localStore := flag.String("local-store", "", "use a local directory as the object store instead of STORAGE_ENDPOINT")
	flag.Parse()

	if flag.NArg() == 0 {
		printError("usage: invoice-proc [--local-store DIR] FILE...\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

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
		printError("opening database: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	var store blob.Store
	if *localStore != "" {
		store, err = blob.NewFSStore(*localStore)
	} else {
		store, err = blob.NewMinioStore(blob.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			BaseURL:   cfg.Storage.BaseURL,
		}, logger)
	}
	if err != nil {
		printError("creating object store: %v\n", err)
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

	failed := 0
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			printError("reading %s: %v\n", path, err)
			failed++
			continue
		}
		outcome, err := proc.Process(ctx, pipeline.Event{Path: path, Data: data})
		fmt.Printf("%s: %s\n", path, outcome)
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
