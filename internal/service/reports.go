package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jask/extracta/internal/database/repository"
	"github.com/jask/extracta/internal/observability"
	"github.com/jask/extracta/internal/report"
)

// ReportResult carries report rows and the statement that produced them.
type ReportResult struct {
	SQL      string
	Args     []any
	Columns  []string
	Rows     []map[string]any
	RowCount int
}

// ReportService compiles and runs reports and stores named templates.
type ReportService struct {
	DB   *sql.DB
	Sink observability.Sink
}

// Execute compiles r and runs it. Money aggregates come back as
// decimal.Decimal in major units.
func (s *ReportService) Execute(ctx context.Context, r report.Request) (ReportResult, error) {
	q, err := report.Compile(r)
	if err != nil {
		return ReportResult{}, err
	}
	timer := observability.Start(s.Sink, "report")
	res, err := repository.Query(ctx, s.DB, q.SQL, q.Args...)
	if err != nil {
		timer.End(observability.Record{Status: observability.StatusError, ErrorCount: 1, Fields: map[string]any{"sql": q.SQL, "error": err.Error()}})
		return ReportResult{}, fmt.Errorf("run report: %w", err)
	}
	for _, row := range res.Rows {
		for col := range q.Money {
			row[col] = centsToDecimal(row[col])
		}
	}
	timer.End(observability.Record{
		Status:   observability.StatusSuccess,
		OutCount: len(res.Rows),
		Fields:   map[string]any{"sql": q.SQL, "grouping": strings.Join(r.Grouping, ",")},
	})
	return ReportResult{
		SQL:      q.SQL,
		Args:     q.Args,
		Columns:  q.Columns,
		Rows:     res.Rows,
		RowCount: len(res.Rows),
	}, nil
}

func centsToDecimal(v any) any {
	switch c := v.(type) {
	case int64:
		return decimal.New(c, -2)
	case float64:
		return decimal.NewFromFloat(c).Shift(-2).Round(2)
	default:
		return v
	}
}

// SaveTemplate stores r under name. Saving an identical request is a no-op.
func (s *ReportService) SaveTemplate(ctx context.Context, name string, r report.Request) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidName
	}
	if _, err := report.Compile(r); err != nil {
		return 0, err
	}
	def, err := r.Canonical()
	if err != nil {
		return 0, err
	}
	return repository.NewTemplateRepo(s.DB).Upsert(ctx, name, string(def))
}

// Template loads a saved request.
func (s *ReportService) Template(ctx context.Context, name string) (report.Request, error) {
	t, err := repository.NewTemplateRepo(s.DB).GetByName(ctx, name)
	if err != nil {
		return report.Request{}, err
	}
	if t == nil {
		return report.Request{}, fmt.Errorf("template %q: %w", name, ErrNotFound)
	}
	return report.ParseRequest([]byte(t.DefinitionJSON))
}

func (s *ReportService) Templates(ctx context.Context) ([]repository.ReportTemplate, error) {
	return repository.NewTemplateRepo(s.DB).List(ctx)
}

// RunTemplate executes a saved request.
func (s *ReportService) RunTemplate(ctx context.Context, name string) (ReportResult, error) {
	r, err := s.Template(ctx, name)
	if err != nil {
		return ReportResult{}, err
	}
	return s.Execute(ctx, r)
}
