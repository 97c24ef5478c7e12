package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"library-catalog/library"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "import-sqlite <database>",
		Short: "Append books and open loans from a legacy SQLite library database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, true, func(mgr *library.LibraryManager) error {
				report, err := mgr.ImportLegacy(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("import %s: %w", args[0], err)
				}
				if asJSON {
					return writeJSON(cmd, report)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d book(s) and %d loan(s)\n", report.Books, report.Loans)
				if report.SkippedLoans > 0 {
					fmt.Fprintf(out, "Skipped %d loan(s) on books already lent\n", report.SkippedLoans)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the import report as JSON")
	return cmd
}
