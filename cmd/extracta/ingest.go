package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/extracta/internal/config"
	"github.com/jask/extracta/internal/database"
	"github.com/jask/extracta/internal/service"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := migrateDatabase(cfg.Database.Path); err != nil {
				return err
			}
			v, dirty, err := database.SchemaVersion(cfg.Database.Path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
			return nil
		},
	}
}

func newIngestCmd() *cobra.Command {
	var (
		docType string
		force   bool
		derive  bool
	)
	cmd := &cobra.Command{
		Use:   "ingest <files...>",
		Short: "Ingest PDF or image documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			svc, err := a.ingester()
			if err != nil {
				return err
			}
			if derive {
				svc.Derivation = a.derivation()
			}
			results, err := svc.IngestMany(ctx, args, service.IngestOptions{DocumentType: docType, Force: force})
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := creditStyle.Render("ingested")
				if r.AlreadyIngested {
					status = warnStyle.Render("already ingested")
				}
				assigned := ""
				if r.Derivation != nil {
					assigned = fmt.Sprint(r.Derivation.Assigned)
				}
				rows = append(rows, []string{
					r.SourceFile, shortHash(r.SourceFileHash), status,
					fmt.Sprint(r.RawLines), fmt.Sprint(r.Inserted), fmt.Sprint(r.Replaced),
					fmt.Sprint(r.Skipped), fmt.Sprint(r.Anomalies), assigned,
				})
			}
			printTable(a.out, "Ingest", []string{"File", "Hash", "Status", "Lines", "Inserted", "Replaced", "Skipped", "Anomalies", "Derived"}, rows)
			return err
		}),
	}
	cmd.Flags().StringVar(&docType, "type", "bank_statement", "document type (bank_statement, receipt, invoice, other)")
	cmd.Flags().BoolVar(&force, "force", false, "replace transactions of an already ingested document")
	cmd.Flags().BoolVar(&derive, "derive", true, "run counterparty derivation after each document")
	return cmd
}

func newDeriveCmd() *cobra.Command {
	var passThrough bool
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive counterparties for transactions that lack one",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			d := a.derivation()
			d.PassThrough = d.PassThrough || passThrough
			stats, err := d.Derive(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "scanned %d, assigned %d, skipped %d\n", stats.Scanned, stats.Assigned, stats.Skipped)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&passThrough, "pass-through", false, "also refine rows whose counterparty equals the description")
	return cmd
}
