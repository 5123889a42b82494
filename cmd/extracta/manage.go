package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/extracta/internal/config"
	"github.com/jask/extracta/internal/database/repository"
	"github.com/jask/extracta/internal/service"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newCounterpartiesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "counterparties", Aliases: []string{"cp"}, Short: "Manage counterparties"}

	list := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			cps, err := (&service.CounterpartyService{DB: a.db, Sink: a.sink}).List(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(cps))
			for _, c := range cps {
				rows = append(rows, []string{fmt.Sprint(c.ID), c.Name, fmt.Sprint(c.TransactionCount)})
			}
			printTable(a.out, "Counterparties", []string{"ID", "Name", "Transactions"}, rows)
			return nil
		}),
	}

	rename := &cobra.Command{
		Use:  "rename <id> <name>",
		Args: cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return (&service.CounterpartyService{DB: a.db, Sink: a.sink}).Rename(ctx, id, args[1])
		}),
	}

	merge := &cobra.Command{
		Use:   "merge <winner> <loser...>",
		Short: "Fold losers into winner",
		Args:  cobra.MinimumNArgs(2),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, s := range args {
				id, err := parseID(s)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			n, err := (&service.CounterpartyService{DB: a.db, Sink: a.sink}).Merge(ctx, ids[0], ids[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "reassigned %d transactions\n", n)
			return nil
		}),
	}

	var ratio float64
	suggest := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest near-duplicate counterparties",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			sugs, err := (&service.CounterpartyService{DB: a.db, Sink: a.sink}).SuggestMerges(ctx, ratio)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(sugs))
			for _, s := range sugs {
				rows = append(rows, []string{
					fmt.Sprint(s.A.ID), s.A.Name, fmt.Sprint(s.B.ID), s.B.Name,
					strconv.FormatFloat(s.Similarity, 'f', 2, 64),
				})
			}
			printTable(a.out, "Merge suggestions", []string{"A", "Name A", "B", "Name B", "Similarity"}, rows)
			return nil
		}),
	}
	suggest.Flags().Float64Var(&ratio, "ratio", 0.2, "max edits per character")

	cmd.AddCommand(list, rename, merge, suggest)
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "categories", Short: "Manage categories"}

	create := &cobra.Command{
		Use:  "create <name>",
		Args: cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			id, err := (&service.CategoryService{DB: a.db}).Create(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created category %d\n", id)
			return nil
		}),
	}

	list := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			cats, err := (&service.CategoryService{DB: a.db}).List(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(cats))
			for _, c := range cats {
				rows = append(rows, []string{fmt.Sprint(c.ID), c.Name})
			}
			printTable(a.out, "Categories", []string{"ID", "Name"}, rows)
			return nil
		}),
	}

	rename := &cobra.Command{
		Use:  "rename <id> <name>",
		Args: cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return (&service.CategoryService{DB: a.db}).Rename(ctx, id, args[1])
		}),
	}

	assign := &cobra.Command{
		Use:   "assign <transaction-id> <category-id|none>",
		Short: "Set or clear a transaction's category",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			var catID *int64
			if args[1] != "none" {
				id, err := parseID(args[1])
				if err != nil {
					return err
				}
				catID = &id
			}
			return (&service.CategoryService{DB: a.db}).Assign(ctx, args[0], catID)
		}),
	}

	del := &cobra.Command{
		Use:  "delete <id>",
		Args: cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return (&service.CategoryService{DB: a.db}).Delete(ctx, id)
		}),
	}

	cmd.AddCommand(create, list, rename, assign, del)
	return cmd
}

func newDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "documents", Aliases: []string{"docs"}, Short: "Manage ingested documents"}

	list := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			docs, err := (&service.DocumentService{DB: a.db, Sink: a.sink}).List(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(docs))
			for _, d := range docs {
				rows = append(rows, []string{
					fmt.Sprint(d.ID), d.Filename, d.FileHash, d.DocumentType, d.Status,
					d.UploadDate.Format("2006-01-02 15:04"),
				})
			}
			printTable(a.out, "Documents", []string{"ID", "File", "Hash", "Type", "Status", "Uploaded"}, rows)
			return nil
		}),
	}

	del := &cobra.Command{
		Use:   "delete <file-hash>",
		Short: "Delete a document and its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, args []string) error {
			n, err := (&service.DocumentService{DB: a.db, Sink: a.sink}).Delete(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted document and %d transactions\n", n)
			return nil
		}),
	}

	cmd.AddCommand(list, del)
	return cmd
}

func newTransactionsCmd() *cobra.Command {
	var (
		month string
		file  string
		limit uint64
		catID int64
		cpID  int64
	)
	list := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			f := repository.TransactionFilters{Month: month, SourceFileHash: file, Limit: limit}
			if catID > 0 {
				f.CategoryID = &catID
			}
			if cpID > 0 {
				f.CounterpartyID = &cpID
			}
			txs, err := repository.NewTransactionRepo(a.db).List(ctx, f)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(txs))
			for _, t := range txs {
				rows = append(rows, []string{
					t.TransactionDate, t.Description, formatAmount(t.AmountIn, t.AmountOut),
					deref(t.Counterparty), derefID(t.CategoryID), t.ID,
				})
			}
			printTable(a.out, "Transactions", []string{"Date", "Description", "Amount", "Counterparty", "Category", "ID"}, rows)
			return nil
		}),
	}
	list.Flags().StringVar(&month, "month", "", "month filter (01-12)")
	list.Flags().StringVar(&file, "file-hash", "", "source file hash filter")
	list.Flags().Uint64Var(&limit, "limit", 100, "max rows, 0 for all")
	list.Flags().Int64Var(&catID, "category", 0, "category id filter")
	list.Flags().Int64Var(&cpID, "counterparty", 0, "counterparty id filter")

	cmd := &cobra.Command{Use: "transactions", Aliases: []string{"tx"}, Short: "Inspect transactions"}
	cmd.AddCommand(list)
	return cmd
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored data, keeping the schema",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			removed, err := (&service.MaintenanceService{DB: a.db, Sink: a.sink}).Reset(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(removed))
			for _, table := range []string{"transactions", "counterparties", "documents", "categories", "report_templates"} {
				rows = append(rows, []string{table, fmt.Sprint(removed[table])})
			}
			printTable(a.out, "Reset", []string{"Table", "Rows removed"}, rows)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Inspect or write configuration"}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.Path())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.Path())
		},
	})
	return cmd
}
