// Package pipeline orchestrates one triggering event end to end:
// analyze -> extract -> archive -> coerce+persist. Every invocation reaches a
// terminal outcome; failures are logged with full context and never propagate
// past the invocation.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/facturio/invoice-ingest/constants"
	"github.com/facturio/invoice-ingest/internal/analyze"
	"github.com/facturio/invoice-ingest/internal/archive"
	"github.com/facturio/invoice-ingest/internal/extract"
	"github.com/facturio/invoice-ingest/internal/repository"
)

// Event is one triggering storage event: a newly uploaded document.
type Event struct {
	// Path is the blob path of the uploaded file, container-relative.
	Path string
	// Data is the raw document content.
	Data []byte
}

// Config holds the persistence defaults applied to every invoice row.
type Config struct {
	SourceContainer string
	DefaultSiteID   int
	DefaultStatusID int
	CreatedBy       string
}

// Processor runs events through analysis, extraction, archival, and
// persistence. One event is processed strictly in order with no internal
// concurrency; the hosting mechanism may run several processors' invocations
// at once.
type Processor struct {
	logger   *slog.Logger
	analyzer analyze.Analyzer
	archiver *archive.Archiver
	invoices repository.InvoiceRepository
	baseURL  string
	cfg      Config
}

func NewProcessor(
	logger *slog.Logger,
	analyzer analyze.Analyzer,
	archiver *archive.Archiver,
	invoices repository.InvoiceRepository,
	accountURL string,
	cfg Config,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		analyzer: analyzer,
		archiver: archiver,
		invoices: invoices,
		baseURL:  accountURL,
		cfg:      cfg,
	}
}

// Process runs one event to a terminal outcome. The returned error is already
// logged and is surfaced only so callers can count failures; it must not abort
// processing of other events.
func (p *Processor) Process(ctx context.Context, ev Event) (constants.Outcome, error) {
	start := time.Now()
	p.logger.Info("pipeline.event.start", "path", ev.Path, "bytes", len(ev.Data))

	res, err := p.analyzer.Analyze(ctx, ev.Data)
	if err != nil {
		p.logger.Error("pipeline.analyze.failed", "path", ev.Path, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return constants.OutcomeFailed, err
	}

	if len(res.Documents) == 0 {
		p.logger.Warn("pipeline.no_document", "path", ev.Path,
			"elapsed_ms", time.Since(start).Milliseconds())
		return constants.OutcomeNoDocument, nil
	}

	fields := extract.ExtractFields(res.Documents[0])
	p.logger.Info("pipeline.fields.extracted", "path", ev.Path, "fields", len(fields))

	// The audit artifact is a precondition for recording financial data:
	// persistence is skipped when the write fails.
	artifact, err := p.archiver.ArchiveExtraction(ctx, ev.Path, fields)
	if err != nil {
		p.logger.Error("pipeline.archive.failed", "path", ev.Path, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return constants.OutcomeFailed, err
	}

	coerced, err := extract.CoerceInvoiceFields(fields)
	if err != nil {
		p.logger.Error("pipeline.coerce.failed", "path", ev.Path, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return constants.OutcomeFailed, err
	}

	inv, err := p.invoices.SaveExtraction(ctx, &repository.SaveExtractionRequest{
		Fields:     coerced,
		SourcePath: ev.Path,
		AccountURL: p.baseURL,
		Container:  p.cfg.SourceContainer,
		SiteID:     p.cfg.DefaultSiteID,
		StatusID:   p.cfg.DefaultStatusID,
		CreatedBy:  p.cfg.CreatedBy,
	})
	if err != nil {
		p.logger.Error("pipeline.persist.failed", "path", ev.Path, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return constants.OutcomeFailed, err
	}

	p.logger.Info("pipeline.committed",
		"path", ev.Path,
		"artifact", artifact,
		"invoice_id", inv.ID,
		"invoice_number", inv.Number,
		"amount", inv.Amount,
		"file_id", inv.FileID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return constants.OutcomeCommitted, nil
}
