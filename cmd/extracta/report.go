package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/extracta/internal/report"
	"github.com/jask/extracta/internal/service"
)

// parseAggSpec parses "field:func[:alias]".
func parseAggSpec(spec string) (report.Aggregation, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return report.Aggregation{}, fmt.Errorf("aggregation %q: want field:func[:alias]", spec)
	}
	agg := report.Aggregation{Field: strings.TrimSpace(parts[0]), Func: strings.TrimSpace(parts[1])}
	if len(parts) == 3 {
		agg.Alias = strings.TrimSpace(parts[2])
	}
	if agg.Field == "" || agg.Func == "" {
		return report.Aggregation{}, fmt.Errorf("aggregation %q: empty field or func", spec)
	}
	return agg, nil
}

type reportFlags struct {
	requestFile string
	group       []string
	aggs        []string
	from, to    string
	categories  []int64
}

func (f reportFlags) build() (report.Request, error) {
	if f.requestFile != "" {
		data, err := os.ReadFile(f.requestFile)
		if err != nil {
			return report.Request{}, fmt.Errorf("read request: %w", err)
		}
		return report.ParseRequest(data)
	}
	r := report.Request{
		Grouping: f.group,
		Filters:  report.Filters{DateFrom: f.from, DateTo: f.to, CategoryIDs: f.categories},
	}
	for _, spec := range f.aggs {
		agg, err := parseAggSpec(spec)
		if err != nil {
			return report.Request{}, err
		}
		r.Aggregations = append(r.Aggregations, agg)
	}
	return r, nil
}

func (f *reportFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.requestFile, "request", "", "JSON report request file")
	cmd.Flags().StringSliceVar(&f.group, "group", nil, "group by field (month, year, category_id, counterparty)")
	cmd.Flags().StringArrayVar(&f.aggs, "agg", nil, "aggregation as field:func[:alias], repeatable")
	cmd.Flags().StringVar(&f.from, "from", "", "inclusive start date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "inclusive end date YYYY-MM-DD")
	cmd.Flags().Int64SliceVar(&f.categories, "category", nil, "category id filter")
}

func printReport(a *app, title string, res service.ReportResult, showSQL bool) {
	if showSQL {
		fmt.Fprintln(a.out, dimStyle.Render(res.SQL))
	}
	rows := make([][]string, 0, len(res.Rows))
	for _, r := range res.Rows {
		line := make([]string, len(res.Columns))
		for i, c := range res.Columns {
			line[i] = formatCell(r[c])
		}
		rows = append(rows, line)
	}
	printTable(a.out, title, res.Columns, rows)
}

func newReportCmd() *cobra.Command {
	var (
		f       reportFlags
		save    string
		showSQL bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run an aggregate report",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			r, err := f.build()
			if err != nil {
				return err
			}
			svc := &service.ReportService{DB: a.db, Sink: a.sink}
			if save != "" {
				id, err := svc.SaveTemplate(ctx, save, r)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "saved template %q (id %d)\n", save, id)
			}
			res, err := svc.Execute(ctx, r)
			if err != nil {
				return err
			}
			printReport(a, "Report", res, showSQL)
			return nil
		}),
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&save, "save", "", "also save the request as a named template")
	cmd.Flags().BoolVar(&showSQL, "sql", false, "print the compiled statement")
	return cmd
}

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "templates", Short: "Manage saved report templates"}

	var f reportFlags
	save := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a report request under a name",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			r, err := f.build()
			if err != nil {
				return err
			}
			svc := &service.ReportService{DB: a.db, Sink: a.sink}
			id, err := svc.SaveTemplate(ctx, args[0], r)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "saved template %q (id %d)\n", args[0], id)
			return nil
		}),
	}
	f.bind(save)

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			svc := &service.ReportService{DB: a.db, Sink: a.sink}
			ts, err := svc.Templates(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(ts))
			for _, t := range ts {
				updated := ""
				if t.UpdatedAt != nil {
					updated = t.UpdatedAt.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{fmt.Sprint(t.ID), t.Name, t.DefinitionJSON, updated})
			}
			printTable(a.out, "Templates", []string{"ID", "Name", "Definition", "Updated"}, rows)
			return nil
		}),
	}

	var showSQL bool
	runCmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			svc := &service.ReportService{DB: a.db, Sink: a.sink}
			res, err := svc.RunTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			printReport(a, args[0], res, showSQL)
			return nil
		}),
	}
	runCmd.Flags().BoolVar(&showSQL, "sql", false, "print the compiled statement")

	cmd.AddCommand(save, list, runCmd)
	return cmd
}
