package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-catalog/library"
)

const shellHelp = `Available commands:
  Books:       add, remove, list
  Circulation: borrow, return, loans
  State:       save, load
  System:      help, exit`

func newShellCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive catalog session",
		Long: "Start an interactive session. The catalog is kept in memory between " +
			"commands and saved on exit when it has unsaved changes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := ctx.openManager(cmd)
			if err != nil {
				return err
			}
			defer mgr.Close()

			s := newShell(cmd, mgr)
			return s.run()
		},
	}
}

type shell struct {
	cmd         *cobra.Command
	mgr         *library.LibraryManager
	sc          *bufio.Scanner
	out         io.Writer
	interactive bool
}

func newShell(cmd *cobra.Command, mgr *library.LibraryManager) *shell {
	in := cmd.InOrStdin()
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &shell{cmd: cmd, mgr: mgr, sc: sc, out: cmd.OutOrStdout(), interactive: interactive}
}

func (s *shell) run() error {
	if s.interactive {
		fmt.Fprintf(s.out, "Library catalog (%s)\n", s.mgr.StatePath())
		fmt.Fprintln(s.out, shellHelp)
	}

	for {
		if s.interactive {
			fmt.Fprint(s.out, "\n> ")
		}
		if !s.sc.Scan() {
			break
		}
		switch cmd := strings.ToLower(strings.TrimSpace(s.sc.Text())); cmd {
		case "":
		case "add":
			s.handleAdd()
		case "remove":
			s.handleRemove()
		case "list":
			printBooks(s.cmd, bookViews(s.mgr))
		case "borrow":
			s.handleBorrow()
		case "return":
			s.handleReturn()
		case "loans":
			printLoans(s.cmd, s.mgr.Loans())
		case "save":
			if err := s.mgr.Save(); err != nil {
				fmt.Fprintf(s.out, "Error saving catalog: %v\n", err)
			} else {
				fmt.Fprintln(s.out, "Catalog saved.")
			}
		case "load":
			s.handleLoad()
		case "help":
			fmt.Fprintln(s.out, shellHelp)
		case "exit", "quit":
			return s.finish()
		default:
			fmt.Fprintf(s.out, "Unknown command %q. Type help for the list of commands.\n", cmd)
		}
	}
	if err := s.sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return s.finish()
}

func (s *shell) finish() error {
	if s.mgr.Dirty() {
		if err := s.mgr.Save(); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Catalog saved.")
	}
	if s.interactive {
		fmt.Fprintln(s.out, "Goodbye!")
	}
	return nil
}

// prompt reads one line. ok is false at end of input.
func (s *shell) prompt(label string) (string, bool) {
	if s.interactive {
		fmt.Fprintf(s.out, "%s: ", label)
	}
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

func (s *shell) promptBook() (library.Book, bool) {
	title, ok := s.prompt("Title")
	if !ok {
		return library.Book{}, false
	}
	author, ok := s.prompt("Author")
	if !ok {
		return library.Book{}, false
	}
	return library.Book{Title: title, Author: author}, true
}

func (s *shell) handleAdd() {
	b, ok := s.promptBook()
	if !ok {
		return
	}
	s.mgr.AddBook(b.Title, b.Author)
	fmt.Fprintf(s.out, "Added %s\n", b)
}

func (s *shell) handleRemove() {
	b, ok := s.promptBook()
	if !ok {
		return
	}
	if err := s.mgr.RemoveBook(b); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Removed %s\n", b)
	warnDetachedLoan(s.out, s.mgr, b)
}

func (s *shell) handleBorrow() {
	b, ok := s.promptBook()
	if !ok {
		return
	}
	var st library.Student
	if st.Name, ok = s.prompt("Name"); !ok {
		return
	}
	if st.Surname, ok = s.prompt("Surname"); !ok {
		return
	}
	if st.PersonalNumber, ok = s.prompt("Personal number"); !ok {
		return
	}
	if st.PersonalNumber == "" {
		fmt.Fprintln(s.out, "Error: personal number cannot be empty")
		return
	}

	if err := s.mgr.BorrowBook(b, st); err != nil {
		if errors.Is(err, library.ErrAlreadyBorrowed) {
			holder, _ := s.mgr.Borrower(b)
			fmt.Fprintf(s.out, "Error: %s is already borrowed by %s\n", b, holder)
			return
		}
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Lent %s to %s\n", b, st)
}

func (s *shell) handleReturn() {
	b, ok := s.promptBook()
	if !ok {
		return
	}
	st, err := s.mgr.ReturnBook(b)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Returned %s from %s\n", b, st)
}

func (s *shell) handleLoad() {
	if err := s.mgr.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(s.out, "No saved catalog yet.")
			return
		}
		fmt.Fprintf(s.out, "Error loading catalog: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Loaded %d book(s).\n", len(s.mgr.Books()))
}
