package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/extracta/internal/database"
	"github.com/jask/extracta/internal/database/repository"
	"github.com/jask/extracta/internal/observability"
	"github.com/jask/extracta/internal/report"
)

func TestCounterpartyRenameMergeSuggest(t *testing.T) {
	db, ctx := setupDB(t)
	cps := repository.NewCounterpartyRepo(db)
	txs := repository.NewTransactionRepo(db)

	rimi, err := cps.GetOrCreate(ctx, "Rimi Lietuva")
	require.NoError(t, err)
	rimi2, err := cps.GetOrCreate(ctx, "Rimi Lietuv")
	require.NoError(t, err)
	netflix, err := cps.GetOrCreate(ctx, "Netflix")
	require.NoError(t, err)

	insertRaw(t, ctx, db, rawTx("a", "x", nil), rawTx("b", "y", nil))
	require.NoError(t, txs.UpdateCounterparty(ctx, "a", "Rimi Lietuva", rimi))
	require.NoError(t, txs.UpdateCounterparty(ctx, "b", "Rimi Lietuv", rimi2))

	rec := &observability.Recorder{}
	svc := &CounterpartyService{DB: db, Sink: rec}

	suggestions, err := svc.SuggestMerges(ctx, 0.2)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	require.ElementsMatch(t, []int64{rimi, rimi2}, []int64{suggestions[0].A.ID, suggestions[0].B.ID})

	require.ErrorIs(t, svc.Rename(ctx, netflix, "RIMI LIETUVA"), ErrRenameCollision)
	require.ErrorIs(t, svc.Rename(ctx, 999, "Nobody"), ErrNotFound)
	require.ErrorIs(t, svc.Rename(ctx, netflix, "  "), ErrInvalidName)
	require.NoError(t, svc.Rename(ctx, rimi, "Rimi"))
	require.Len(t, rec.ByStage("counterparty_rename"), 1)

	a, err := txs.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "Rimi", *a.Counterparty)

	moved, err := svc.Merge(ctx, rimi, []int64{rimi2, rimi})
	require.NoError(t, err)
	require.Equal(t, 1, moved)
	require.Len(t, rec.ByStage("counterparty_merge"), 1)

	b, err := txs.Get(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, rimi, *b.CounterpartyID)
	require.Equal(t, "Rimi", *b.Counterparty)

	gone, err := cps.Get(ctx, rimi2)
	require.NoError(t, err)
	require.Nil(t, gone)

	_, err = svc.Merge(ctx, rimi, []int64{12345})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryLifecycle(t *testing.T) {
	db, ctx := setupDB(t)
	require.NoError(t, database.SeedDefaults(ctx, db))
	svc := &CategoryService{DB: db}

	id, err := svc.Create(ctx, "Coffee")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Coffee")
	require.ErrorIs(t, err, ErrDuplicateName)
	_, err = svc.Create(ctx, " ")
	require.ErrorIs(t, err, ErrInvalidName)

	require.ErrorIs(t, svc.Rename(ctx, id, "Groceries"), ErrDuplicateName)
	require.ErrorIs(t, svc.Rename(ctx, 9999, "Nope"), ErrNotFound)
	require.NoError(t, svc.Rename(ctx, id, "Cafes"))

	insertRaw(t, ctx, db, rawTx("a", "Coffee Shop", nil))
	require.NoError(t, svc.Assign(ctx, "a", &id))
	require.ErrorIs(t, svc.Assign(ctx, "missing", &id), ErrNotFound)
	bogus := int64(9999)
	require.ErrorIs(t, svc.Assign(ctx, "a", &bogus), ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, id), ErrCategoryInUse)
	require.NoError(t, svc.Assign(ctx, "a", nil))
	require.NoError(t, svc.Delete(ctx, id))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	for _, c := range list {
		require.NotEqual(t, "Cafes", c.Name)
	}
}

func TestDocumentDeleteCascades(t *testing.T) {
	db, ctx := setupDB(t)
	rec := &observability.Recorder{}
	ing := &IngestService{DB: db, Pipeline: linesPipeline(nil, "2025-01-15 Tea -1.00", "2025-01-16 Cake -2.00")}
	res, err := ing.Ingest(ctx, writeDoc(t, "s.pdf", "doc"), IngestOptions{})
	require.NoError(t, err)

	docs := &DocumentService{DB: db, Sink: rec}
	list, err := docs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	removed, err := docs.Delete(ctx, res.SourceFileHash)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	count, err := repository.NewTransactionRepo(db).Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	_, err = docs.Delete(ctx, res.SourceFileHash)
	require.ErrorIs(t, err, ErrNotFound)
	recs := rec.ByStage("document_delete")
	require.Len(t, recs, 2)
	require.Equal(t, observability.StatusError, recs[1].Status)

	require.Equal(t, "receipt", NormalizeDocumentType(" Receipt "))
	require.Equal(t, "other", NormalizeDocumentType("payslip"))
}

func TestReportTemplates(t *testing.T) {
	db, ctx := setupDB(t)
	insertRaw(t, ctx, db, rawTx("a", "Tea", nil), rawTx("b", "Cake", nil))
	svc := &ReportService{DB: db}

	req := report.Request{
		Grouping:     []string{"month"},
		Aggregations: []report.Aggregation{{Field: "*", Func: "count", Alias: "n"}},
	}
	id, err := svc.SaveTemplate(ctx, "monthly", req)
	require.NoError(t, err)
	again, err := svc.SaveTemplate(ctx, "monthly", req)
	require.NoError(t, err)
	require.Equal(t, id, again)

	_, err = svc.SaveTemplate(ctx, "broken", report.Request{Aggregations: []report.Aggregation{{Field: "amount_out", Func: "median"}}})
	require.ErrorIs(t, err, report.ErrUnsupportedFunction)

	got, err := svc.Template(ctx, "monthly")
	require.NoError(t, err)
	require.Equal(t, req.Grouping, got.Grouping)

	out, err := svc.RunTemplate(ctx, "monthly")
	require.NoError(t, err)
	require.Equal(t, 1, out.RowCount)
	require.EqualValues(t, 2, out.Rows[0]["n"])

	_, err = svc.RunTemplate(ctx, "absent")
	require.ErrorIs(t, err, ErrNotFound)

	list, err := svc.Templates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestReportAverageAndFilters(t *testing.T) {
	db, ctx := setupDB(t)
	a := rawTx("a", "Tea", nil)
	b := rawTx("b", "Cake", nil)
	b.AmountOut = decimal.RequireFromString("2.00")
	c := rawTx("c", "Late", nil)
	c.TransactionDate = "2025-02-01"
	c.Month = "2025-02"
	insertRaw(t, ctx, db, a, b, c)

	out, err := (&ReportService{DB: db}).Execute(ctx, report.Request{
		Filters:      report.Filters{DateFrom: "2025-01-01", DateTo: "2025-01-31"},
		Aggregations: []report.Aggregation{{Field: "amount_out", Func: "avg", Alias: "avg_out"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.RowCount)
	avg, ok := out.Rows[0]["avg_out"].(decimal.Decimal)
	require.True(t, ok)
	require.True(t, avg.Equal(decimal.RequireFromString("1.50")), avg.String())
}

func TestReportRejectsKeywordAliasBeforeQuery(t *testing.T) {
	db, ctx := setupDB(t)
	insertRaw(t, ctx, db, rawTx("a", "Tea", nil))
	rec := &observability.Recorder{}

	_, err := (&ReportService{DB: db, Sink: rec}).Execute(ctx, report.Request{
		Aggregations: []report.Aggregation{{Field: "amount_out", Func: "sum", Alias: "order"}},
	})
	require.ErrorIs(t, err, report.ErrInvalidAlias)
	require.Empty(t, rec.ByStage("report"))
}

func TestMaintenanceReset(t *testing.T) {
	db, ctx := setupDB(t)
	require.NoError(t, database.SeedDefaults(ctx, db))
	insertRaw(t, ctx, db, rawTx("a", "Tea", nil))

	rec := &observability.Recorder{}
	removed, err := (&MaintenanceService{DB: db, Sink: rec}).Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed["transactions"])
	require.Equal(t, 8, removed["categories"])
	require.Len(t, rec.ByStage("reset"), 1)

	for _, table := range []string{"transactions", "categories", "documents", "counterparties", "report_templates"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		require.Zero(t, n, table)
	}
	_, err = (&MaintenanceService{}).Reset(ctx)
	require.Error(t, err)
}
