package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/library"
)

func newCirculationCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newBorrowCommand(ctx),
		newReturnCommand(ctx),
		newLoansCommand(ctx),
	}
}

func newBorrowCommand(ctx *commandContext) *cobra.Command {
	var student library.Student
	cmd := &cobra.Command{
		Use:   "borrow <title> <author>",
		Short: "Lend a book to a student",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(student.PersonalNumber) == "" {
				return errors.New("--personal-number must not be empty")
			}
			b := library.Book{Title: args[0], Author: args[1]}
			return ctx.withManager(cmd, true, func(mgr *library.LibraryManager) error {
				if err := mgr.BorrowBook(b, student); err != nil {
					if holder, ok := mgr.Borrower(b); ok && errors.Is(err, library.ErrAlreadyBorrowed) {
						return fmt.Errorf("%w (held by %s)", err, holder)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Lent %s to %s\n", b, student)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&student.Name, "name", "", "Student first name")
	cmd.Flags().StringVar(&student.Surname, "surname", "", "Student surname")
	cmd.Flags().StringVar(&student.PersonalNumber, "personal-number", "", "Student personal number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("surname")
	_ = cmd.MarkFlagRequired("personal-number")
	return cmd
}

func newReturnCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "return <title> <author>",
		Short: "Record the return of a borrowed book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := library.Book{Title: args[0], Author: args[1]}
			return ctx.withManager(cmd, true, func(mgr *library.LibraryManager) error {
				s, err := mgr.ReturnBook(b)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Returned %s from %s\n", b, s)
				return nil
			})
		},
	}
}

func newLoansCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List active loans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, false, func(mgr *library.LibraryManager) error {
				loans := mgr.Loans()
				if asJSON {
					return writeJSON(cmd, loans)
				}
				printLoans(cmd, loans)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printLoans(cmd *cobra.Command, loans []library.Loan) {
	out := cmd.OutOrStdout()
	if len(loans) == 0 {
		fmt.Fprintln(out, "No active loans.")
		return
	}
	rows := make([][]string, 0, len(loans))
	for _, l := range loans {
		rows = append(rows, []string{
			l.Book.Title,
			l.Book.Author,
			strings.TrimSpace(l.Student.Name + " " + l.Student.Surname),
			l.Student.PersonalNumber,
			yesNo(l.Orphaned),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Title", "Author", "Student", "Personal Number", "Removed"}, rows))
}
