package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// ManagerOptions configures a LibraryManager.
type ManagerOptions struct {
	// StatePath is the catalog state file. It need not exist yet.
	StatePath string
	// LockTimeout bounds how long to wait for another process holding the
	// state lock. Zero means a single attempt.
	LockTimeout time.Duration
	Logger      *slog.Logger
}

// LibraryManager is a thin façade over a Catalog and its state file, keeping
// CLI code simple. It holds an exclusive lock on the state file until Close.
type LibraryManager struct {
	catalog   *Catalog
	statePath string
	lock      *flock.Flock
	logger    *slog.Logger
	dirty     bool
}

// NewLibraryManager locks the state file and loads it when present.
func NewLibraryManager(ctx context.Context, opts ManagerOptions) (*LibraryManager, error) {
	if opts.StatePath == "" {
		return nil, errors.New("state path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "library", "state_file", opts.StatePath)

	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(opts.StatePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	lm := &LibraryManager{
		catalog:   NewCatalog(),
		statePath: opts.StatePath,
		lock:      flock.New(opts.StatePath + ".lock"),
		logger:    logger,
	}
	if err := lm.acquireLock(ctx, opts.LockTimeout); err != nil {
		return nil, err
	}

	if err := lm.catalog.LoadState(opts.StatePath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			lm.logger.Error("load state failed", "error", err)
			_ = lm.lock.Unlock()
			return nil, err
		}
		lm.logger.Info("no state file yet, starting with an empty catalog")
	} else {
		lm.logger.Debug("state loaded", "books", lm.catalog.Len())
	}
	return lm, nil
}

func (lm *LibraryManager) acquireLock(ctx context.Context, timeout time.Duration) error {
	var (
		ok  bool
		err error
	)
	if timeout <= 0 {
		ok, err = lm.lock.TryLock()
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		ok, err = lm.lock.TryLockContext(lockCtx, lockRetryDelay)
		if errors.Is(err, context.DeadlineExceeded) {
			ok, err = false, nil
		}
	}
	if err != nil {
		return fmt.Errorf("acquire state lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrStateLocked, lm.lock.Path())
	}
	return nil
}

// Close releases the state lock. Unsaved changes are discarded.
func (lm *LibraryManager) Close() error {
	if lm.dirty {
		lm.logger.Warn("closing with unsaved changes")
	}
	return lm.lock.Unlock()
}

// StatePath returns the state file the manager reads and writes.
func (lm *LibraryManager) StatePath() string { return lm.statePath }

// Dirty reports whether the catalog changed since the last save or load.
func (lm *LibraryManager) Dirty() bool { return lm.dirty }

// ------------------ Book helpers ------------------

func (lm *LibraryManager) AddBook(title, author string) Book {
	b := Book{Title: title, Author: author}
	lm.catalog.AddBook(b)
	lm.dirty = true
	lm.logger.Info("book added", "title", title, "author", author)
	return b
}

func (lm *LibraryManager) RemoveBook(b Book) error {
	if !lm.catalog.RemoveBook(b) {
		return fmt.Errorf("remove %s: %w", b, ErrBookNotFound)
	}
	lm.dirty = true
	lm.logger.Info("book removed", "title", b.Title, "author", b.Author)
	if _, detached := lm.DetachedLoan(b); detached {
		lm.logger.Warn("removed book still has an active loan", "title", b.Title, "author", b.Author)
	}
	return nil
}

func (lm *LibraryManager) Books() []Book { return lm.catalog.Books() }

// DetachedLoan reports the loan on b when no copy of b is left in the
// catalog. Such a loan is not written by Save.
func (lm *LibraryManager) DetachedLoan(b Book) (Student, bool) {
	s, ok := lm.catalog.Borrower(b)
	if !ok || lm.inCatalog(b) {
		return Student{}, false
	}
	return s, true
}

func (lm *LibraryManager) inCatalog(b Book) bool {
	return slices.Contains(lm.catalog.books, b)
}

// ------------------ Circulation ------------------

// BorrowBook lends b to s. Only books in the catalog can be lent, since the
// state file records loans alongside their book.
func (lm *LibraryManager) BorrowBook(b Book, s Student) error {
	if !lm.inCatalog(b) {
		return fmt.Errorf("borrow %s: %w", b, ErrBookNotFound)
	}
	if !lm.catalog.BorrowBook(b, s) {
		return fmt.Errorf("borrow %s: %w", b, ErrAlreadyBorrowed)
	}
	lm.dirty = true
	lm.logger.Info("book borrowed", "title", b.Title, "author", b.Author, "personal_number", s.PersonalNumber)
	return nil
}

// ReturnBook ends the loan on b and yields the student who had it.
func (lm *LibraryManager) ReturnBook(b Book) (Student, error) {
	s, _ := lm.catalog.Borrower(b)
	if !lm.catalog.ReturnBook(b) {
		return Student{}, fmt.Errorf("return %s: %w", b, ErrNotBorrowed)
	}
	lm.dirty = true
	lm.logger.Info("book returned", "title", b.Title, "author", b.Author, "personal_number", s.PersonalNumber)
	return s, nil
}

func (lm *LibraryManager) Borrower(b Book) (Student, bool) { return lm.catalog.Borrower(b) }
func (lm *LibraryManager) Loans() []Loan                    { return lm.catalog.Loans() }

// ------------------ Persistence ------------------

// Save writes the catalog to the state file.
func (lm *LibraryManager) Save() error {
	if err := lm.catalog.SaveState(lm.statePath); err != nil {
		lm.logger.Error("save state failed", "error", err)
		return err
	}
	lm.dirty = false
	lm.logger.Debug("state saved", "books", lm.catalog.Len())
	return nil
}

// Load discards in-memory changes and rereads the state file.
func (lm *LibraryManager) Load() error {
	if err := lm.catalog.LoadState(lm.statePath); err != nil {
		lm.logger.Error("load state failed", "error", err)
		return err
	}
	lm.dirty = false
	lm.logger.Debug("state loaded", "books", lm.catalog.Len())
	return nil
}

// ------------------ Legacy import ------------------

// ImportReport summarises an ImportLegacy run.
type ImportReport struct {
	Books        int `json:"books"`
	Loans        int `json:"loans"`
	SkippedLoans int `json:"skipped_loans"`
}

// ImportLegacy appends every book from a legacy SQLite library database and
// records its open checkouts as loans. Loans on a book that is already lent
// are skipped.
func (lm *LibraryManager) ImportLegacy(ctx context.Context, dbPath string) (ImportReport, error) {
	var report ImportReport

	db, err := OpenLegacyDatabase(dbPath)
	if err != nil {
		return report, err
	}
	defer db.Close()

	records, err := db.Records(ctx)
	if err != nil {
		return report, err
	}

	for _, rec := range records {
		lm.catalog.AddBook(rec.Book)
		report.Books++
		if rec.Borrower == nil {
			continue
		}
		if lm.catalog.BorrowBook(rec.Book, *rec.Borrower) {
			report.Loans++
		} else {
			report.SkippedLoans++
			lm.logger.Warn("skipping conflicting legacy loan",
				"title", rec.Book.Title, "author", rec.Book.Author,
				"personal_number", rec.Borrower.PersonalNumber)
		}
	}
	if report.Books > 0 {
		lm.dirty = true
	}
	lm.logger.Info("legacy import complete",
		"source", dbPath, "books", report.Books, "loans", report.Loans, "skipped_loans", report.SkippedLoans)
	return report, nil
}
