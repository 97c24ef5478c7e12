// Command import_books converts a legacy SQLite library database into a
// catalog state file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/internal/logging"
	"library-catalog/library"
)

func main() {
	if err := newImportBooksCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

type importOptions struct {
	dbPath    string
	statePath string
	fresh     bool
	logLevel  string
}

func newImportBooksCommand() *cobra.Command {
	var opts importOptions
	cmd := &cobra.Command{
		Use:           "import_books",
		Short:         "Import books and open loans from a legacy SQLite database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.dbPath, "db", "library.db", "Legacy SQLite database")
	cmd.Flags().StringVar(&opts.statePath, "state", "catalog.txt", "Catalog state file to write")
	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "Discard the existing state file before importing")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	return cmd
}

func runImport(ctx context.Context, out io.Writer, opts importOptions) error {
	logger, err := logging.New(logging.Options{Level: opts.logLevel, Format: "auto"})
	if err != nil {
		return err
	}

	if opts.fresh {
		fmt.Fprintf(out, "Removing existing state file %s...\n", opts.statePath)
		if err := os.Remove(opts.statePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove state file: %w", err)
		}
	}

	mgr, err := library.NewLibraryManager(ctx, library.ManagerOptions{
		StatePath: opts.statePath,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer mgr.Close()

	before := len(mgr.Books())
	fmt.Fprintf(out, "Importing books from %s...\n", opts.dbPath)
	report, err := mgr.ImportLegacy(ctx, opts.dbPath)
	if err != nil {
		return err
	}
	if err := mgr.Save(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Books imported: %d\n", report.Books)
	fmt.Fprintf(out, "Loans imported: %d\n", report.Loans)
	if report.SkippedLoans > 0 {
		fmt.Fprintf(out, "Loans skipped (book already lent): %d\n", report.SkippedLoans)
	}

	books := mgr.Books()[before:]
	if len(books) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nImported books:")
	fmt.Fprintf(out, "%-50s %-30s %s\n", "Title", "Author", "Borrower")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for _, b := range books {
		borrower := ""
		if s, ok := mgr.Borrower(b); ok {
			borrower = s.String()
		}
		fmt.Fprintf(out, "%-50s %-30s %s\n", truncateString(b.Title, 50), truncateString(b.Author, 30), borrower)
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
