// Package archive writes the audit snapshot of extracted fields. The archive
// artifact is a precondition for recording financial data: persistence is
// skipped when the write fails.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/facturio/invoice-ingest/internal/blob"
	"github.com/facturio/invoice-ingest/internal/extract"
)

// Archiver serializes a normalized field map as indented JSON and writes it
// to the archive container, keyed by the source file's base name.
type Archiver struct {
	store     blob.Store
	container string
	logger    *slog.Logger
}

func NewArchiver(store blob.Store, container string, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{store: store, container: container, logger: logger}
}

// ArtifactName derives the artifact name from a source path:
// "invoices/facture2.pdf" -> "facture2.json".
func ArtifactName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + ".json"
}

// ArchiveExtraction writes-or-overwrites the artifact for sourcePath and
// returns the artifact name.
func (a *Archiver) ArchiveExtraction(ctx context.Context, sourcePath string, fields map[string]extract.FieldEntry) (string, error) {
	name := ArtifactName(sourcePath)

	payload, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal extraction: %w", err)
	}

	if err := a.store.Put(ctx, a.container, name, payload, "application/json"); err != nil {
		return "", fmt.Errorf("archive artifact: %w", err)
	}

	a.logger.Info("archive.write.ok",
		"container", a.container,
		"artifact", name,
		"fields", len(fields),
		"bytes", len(payload),
	)
	return name, nil
}
