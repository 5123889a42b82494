package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jask/extracta/internal/database"
	"github.com/jask/extracta/internal/database/repository"
	"github.com/jask/extracta/internal/observability"
)

// DocumentTypes accepted for uploads.
var DocumentTypes = []string{"bank_statement", "receipt", "invoice", "other"}

// NormalizeDocumentType maps unknown or empty types to "other".
func NormalizeDocumentType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	for _, known := range DocumentTypes {
		if t == known {
			return t
		}
	}
	return "other"
}

// DocumentService lists and removes ingested documents.
type DocumentService struct {
	DB   *sql.DB
	Sink observability.Sink
}

// List returns documents newest first.
func (s *DocumentService) List(ctx context.Context) ([]repository.Document, error) {
	return repository.NewDocumentRepo(s.DB).List(ctx)
}

// Delete removes a document and all of its transactions, returning how many
// transactions went with it.
func (s *DocumentService) Delete(ctx context.Context, fileHash string) (int, error) {
	timer := observability.Start(s.Sink, "document_delete")
	removed := 0
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		docs := repository.NewDocumentRepo(tx)
		doc, err := docs.GetByHash(ctx, fileHash)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("document %s: %w", fileHash, ErrNotFound)
		}
		if removed, err = repository.NewTransactionRepo(tx).DeleteBySourceFileHash(ctx, fileHash); err != nil {
			return err
		}
		_, err = docs.DeleteByHash(ctx, fileHash)
		return err
	})
	rec := observability.Record{
		Status:   observability.StatusSuccess,
		InCount:  1,
		OutCount: removed,
		Fields:   map[string]any{"file_hash": fileHash},
	}
	if err != nil {
		rec.Status = observability.StatusError
		rec.ErrorCount = 1
		rec.Fields["error"] = err.Error()
	}
	timer.End(rec)
	if err != nil {
		return 0, err
	}
	return removed, nil
}
