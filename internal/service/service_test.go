package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/extracta/internal/database"
	"github.com/jask/extracta/internal/database/repository"
	"github.com/jask/extracta/internal/ingest"
	"github.com/jask/extracta/internal/observability"
)

func setupDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, ctx
}

// linesPipeline serves fixed extractor output for every PDF.
func linesPipeline(sink observability.Sink, lines ...string) *ingest.Pipeline {
	return &ingest.Pipeline{
		Extractors: map[ingest.FileType]ingest.Extractor{
			ingest.FileTypePDF: ingest.ExtractorFunc(func(context.Context, string) []ingest.Line {
				out := make([]ingest.Line, len(lines))
				for i, l := range lines {
					out[i] = ingest.Line{RawText: l}
				}
				return out
			}),
		},
		Sink: sink,
	}
}

func writeDoc(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func insertRaw(t *testing.T, ctx context.Context, db *sql.DB, txs ...repository.Transaction) {
	t.Helper()
	_, err := repository.NewTransactionRepo(db).BulkInsert(ctx, txs)
	require.NoError(t, err)
}

func rawTx(id, desc string, counterparty *string) repository.Transaction {
	return repository.Transaction{
		ID:                id,
		TransactionDate:   "2025-01-15",
		Description:       desc,
		AmountIn:          decimal.Zero,
		AmountOut:         decimal.RequireFromString("1.00"),
		Counterparty:      counterparty,
		SourceFile:        "s.pdf",
		SourceFileHash:    "fh",
		NormalizationHash: "h-" + id,
		Year:              2025,
		Month:             "2025-01",
		MappingVersion:    "1",
		LogicVersion:      "1.0.0",
	}
}

func strPtr(s string) *string { return &s }
