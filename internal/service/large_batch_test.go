package service

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/extracta/internal/database/repository"
	"github.com/jask/extracta/internal/report"
	"github.com/jask/extracta/internal/testdata"
)

func TestLargeStatementIsReproducible(t *testing.T) {
	lines := testdata.StatementLines(500, 42)

	hashesFor := func() []string {
		db, ctx := setupDB(t)
		svc := &IngestService{DB: db, Pipeline: linesPipeline(nil, lines...)}
		res, err := svc.Ingest(ctx, writeDoc(t, "big.pdf", "same"), IngestOptions{})
		require.NoError(t, err)
		require.Equal(t, 500, res.Normalized)

		txs, err := repository.NewTransactionRepo(db).List(ctx, repository.TransactionFilters{})
		require.NoError(t, err)
		out := make([]string, 0, len(txs))
		for _, tx := range txs {
			out = append(out, tx.NormalizationHash)
		}
		sort.Strings(out)

		rep, err := (&ReportService{DB: db}).Execute(ctx, report.Request{
			Grouping:     []string{"month"},
			Aggregations: []report.Aggregation{{Field: "*", Func: "count", Alias: "n"}},
		})
		require.NoError(t, err)
		total := int64(0)
		for _, row := range rep.Rows {
			total += row["n"].(int64)
		}
		require.Equal(t, int64(res.Inserted), total)
		return out
	}

	require.Equal(t, hashesFor(), hashesFor())
}

func TestSeedCategories(t *testing.T) {
	db, ctx := setupDB(t)
	repo := repository.NewCategoryRepo(db)
	require.NoError(t, testdata.SeedCategories(ctx, repo))
	require.NoError(t, testdata.SeedCategories(ctx, repo))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 6)
}
