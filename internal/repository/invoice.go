package repository

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facturio/invoice-ingest/constants"
	"github.com/facturio/invoice-ingest/internal/blob"
	"github.com/facturio/invoice-ingest/internal/entity"
	"github.com/facturio/invoice-ingest/internal/extract"
)

// DB is the slice of pgxpool.Pool the repository needs. Narrowed so tests can
// substitute a fake transaction.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SaveExtractionRequest wraps parameters for recording one processed document.
type SaveExtractionRequest struct {
	Fields     extract.InvoiceFields
	SourcePath string
	AccountURL string
	Container  string
	SiteID     int
	StatusID   int
	CreatedBy  string
}

type InvoiceRepository interface {
	// SaveExtraction inserts the file row and the invoice row as one atomic
	// unit of work and returns the committed invoice.
	SaveExtraction(ctx context.Context, req *SaveExtractionRequest) (*entity.Invoice, error)
	ListInvoices(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.Invoice, error)
	GetFileByID(ctx context.Context, id uuid.UUID) (*entity.AppFile, error)
}

type invoiceRepository struct {
	db     DB
	logger *slog.Logger
}

func NewInvoiceRepository(db DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *invoiceRepository) SaveExtraction(ctx context.Context, req *SaveExtractionRequest) (*entity.Invoice, error) {
	original := filepath.Base(req.SourcePath)
	fileURL := blob.ObjectURL(req.AccountURL, req.Container, original)
	now := time.Now().UTC()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("failed to begin transaction", "source_path", req.SourcePath, "error", err)
		return nil, fmt.Errorf("begin: %w", err)
	}
	// Rollback is a no-op once the transaction is committed.
	defer func() { _ = tx.Rollback(ctx) }()

	fileSQL, fileArgs, err := squirrel.Insert("files.app_file").
		Columns("source_name", "source_id", "container_name", "original_file_name", "system_file_name", "date_creation", "file_url").
		Values(constants.SourceName, req.SourcePath, req.Container, original, original, now, fileURL).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build file insert: %w", err)
	}

	var fileID uuid.UUID
	if err := tx.QueryRow(ctx, fileSQL, fileArgs...).Scan(&fileID); err != nil {
		r.logger.Error("failed to insert file row", "source_path", req.SourcePath, "error", err)
		return nil, fmt.Errorf("insert file: %w", err)
	}

	invoiceSQL, invoiceArgs, err := squirrel.Insert("invoices.invoice").
		Columns("number", "site_id", "ref_invoice_status_id", "is_archived", "date_issue", "date_due", "amount", "file_id", "date_created", "created_by").
		Values(req.Fields.Number, req.SiteID, req.StatusID, false, req.Fields.IssueDate, req.Fields.DueDate, req.Fields.Amount, fileID, now, req.CreatedBy).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoice insert: %w", err)
	}

	var invoiceID uuid.UUID
	if err := tx.QueryRow(ctx, invoiceSQL, invoiceArgs...).Scan(&invoiceID); err != nil {
		r.logger.Error("failed to insert invoice row", "source_path", req.SourcePath, "file_id", fileID, "error", err)
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("failed to commit", "source_path", req.SourcePath, "error", err)
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &entity.Invoice{
		ID:          invoiceID,
		Number:      req.Fields.Number,
		SiteID:      req.SiteID,
		StatusID:    req.StatusID,
		IsArchived:  false,
		DateIssue:   req.Fields.IssueDate,
		DateDue:     req.Fields.DueDate,
		Amount:      req.Fields.Amount,
		FileID:      fileID,
		DateCreated: now,
		CreatedBy:   req.CreatedBy,
	}, nil
}

func (r *invoiceRepository) ListInvoices(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.Invoice, error) {
	q := squirrel.Select("id", "number", "site_id", "ref_invoice_status_id", "is_archived", "date_issue", "date_due", "amount", "file_id", "date_created", "created_by").
		From("invoices.invoice").
		OrderBy("date_created").
		PlaceholderFormat(squirrel.Dollar)
	if fromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date_created": *fromDate})
	}
	if toDate != nil {
		q = q.Where(squirrel.LtOrEq{"date_created": *toDate})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build invoice select: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, err
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.Number, &inv.SiteID, &inv.StatusID, &inv.IsArchived,
			&inv.DateIssue, &inv.DateDue, &inv.Amount, &inv.FileID, &inv.DateCreated, &inv.CreatedBy,
		); err != nil {
			return nil, err
		}
		invoices = append(invoices, &inv)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepository) GetFileByID(ctx context.Context, id uuid.UUID) (*entity.AppFile, error) {
	sql, args, err := squirrel.Select("id", "source_name", "source_id", "container_name", "original_file_name", "system_file_name", "date_creation", "file_url").
		From("files.app_file").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build file select: %w", err)
	}

	var f entity.AppFile
	if err := r.db.QueryRow(ctx, sql, args...).Scan(
		&f.ID, &f.SourceName, &f.SourceID, &f.ContainerName,
		&f.OriginalFileName, &f.SystemFileName, &f.DateCreation, &f.FileURL,
	); err != nil {
		r.logger.Error("failed to get file by id", "file_id", id, "error", err)
		return nil, err
	}
	return &f, nil
}
