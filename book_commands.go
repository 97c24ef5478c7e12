package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"library-catalog/library"
)

func newBookCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newAddCommand(ctx),
		newRemoveCommand(ctx),
		newListCommand(ctx),
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <author>",
		Short: "Add a book to the catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, true, func(mgr *library.LibraryManager) error {
				b := mgr.AddBook(args[0], args[1])
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", b)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <title> <author>",
		Short: "Remove the first matching book from the catalog",
		Long: "Remove the first book matching title and author. When no copy is left, " +
			"an active loan on the book is dropped from the saved catalog and a warning is printed.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := library.Book{Title: args[0], Author: args[1]}
			return ctx.withManager(cmd, true, func(mgr *library.LibraryManager) error {
				if err := mgr.RemoveBook(b); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", b)
				warnDetachedLoan(cmd.OutOrStdout(), mgr, b)
				return nil
			})
		},
	}
}

type bookView struct {
	Title    string           `json:"title"`
	Author   string           `json:"author"`
	Borrower *library.Student `json:"borrower,omitempty"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List books in catalog order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, false, func(mgr *library.LibraryManager) error {
				views := bookViews(mgr)
				if asJSON {
					return writeJSON(cmd, views)
				}
				printBooks(cmd, views)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func bookViews(mgr *library.LibraryManager) []bookView {
	books := mgr.Books()
	views := make([]bookView, 0, len(books))
	for _, b := range books {
		view := bookView{Title: b.Title, Author: b.Author}
		if s, ok := mgr.Borrower(b); ok {
			view.Borrower = &s
		}
		views = append(views, view)
	}
	return views
}

func printBooks(cmd *cobra.Command, views []bookView) {
	out := cmd.OutOrStdout()
	if len(views) == 0 {
		fmt.Fprintln(out, "No books in catalog.")
		return
	}
	rows := make([][]string, 0, len(views))
	for i, v := range views {
		borrower := ""
		if v.Borrower != nil {
			borrower = v.Borrower.String()
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), v.Title, v.Author, borrower})
	}
	fmt.Fprintln(out, renderTable([]string{indexHeader, "Title", "Author", "Borrowed By"}, rows))
}

// warnDetachedLoan tells the user that the loan on a removed book will not be
// saved.
func warnDetachedLoan(w io.Writer, mgr *library.LibraryManager, b library.Book) {
	if s, ok := mgr.DetachedLoan(b); ok {
		fmt.Fprintf(w, "Warning: %s was on loan to %s; the loan is dropped when the catalog is saved\n", b, s)
	}
}
