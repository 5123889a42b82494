package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "extracta",
		Short:        "Extract, normalize and report on financial documents",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newIngestCmd(),
		newDeriveCmd(),
		newReportCmd(),
		newTemplatesCmd(),
		newCounterpartiesCmd(),
		newCategoriesCmd(),
		newDocumentsCmd(),
		newTransactionsCmd(),
		newResetCmd(),
		newConfigCmd(),
	)
	return root
}
