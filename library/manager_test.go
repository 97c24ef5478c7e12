package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, statePath string) *LibraryManager {
	t.Helper()
	mgr, err := NewLibraryManager(context.Background(), ManagerOptions{StatePath: statePath})
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestManagerStartsEmptyWithoutStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.txt")
	mgr := newManager(t, path)

	assert.Empty(t, mgr.Books())
	assert.False(t, mgr.Dirty())
	assert.DirExists(t, filepath.Dir(path))
}

func TestManagerCirculationErrors(t *testing.T) {
	mgr := newManager(t, filepath.Join(t.TempDir(), "catalog.txt"))
	b := mgr.AddBook("Dune", "Herbert")

	require.NoError(t, mgr.BorrowBook(b, ada))
	assert.ErrorIs(t, mgr.BorrowBook(b, grace), ErrAlreadyBorrowed)

	holder, err := mgr.ReturnBook(b)
	require.NoError(t, err)
	assert.Equal(t, ada, holder)

	_, err = mgr.ReturnBook(b)
	assert.ErrorIs(t, err, ErrNotBorrowed)

	require.NoError(t, mgr.RemoveBook(b))
	assert.ErrorIs(t, mgr.RemoveBook(b), ErrBookNotFound)
}

func TestManagerSaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.txt")

	mgr, err := NewLibraryManager(context.Background(), ManagerOptions{StatePath: path})
	require.NoError(t, err)
	b := mgr.AddBook("Dune", "Herbert")
	mgr.AddBook("1984", "Orwell")
	require.NoError(t, mgr.BorrowBook(b, ada))
	require.True(t, mgr.Dirty())
	require.NoError(t, mgr.Save())
	assert.False(t, mgr.Dirty())
	require.NoError(t, mgr.Close())

	reopened := newManager(t, path)
	assert.Equal(t, []Book{dune, nineteen}, reopened.Books())
	holder, ok := reopened.Borrower(dune)
	require.True(t, ok)
	assert.Equal(t, ada, holder)
}

func TestManagerLoadDiscardsUnsavedChanges(t *testing.T) {
	mgr := newManager(t, filepath.Join(t.TempDir(), "catalog.txt"))
	mgr.AddBook("Dune", "Herbert")
	require.NoError(t, mgr.Save())

	mgr.AddBook("1984", "Orwell")
	require.NoError(t, mgr.Load())

	assert.Equal(t, []Book{dune}, mgr.Books())
	assert.False(t, mgr.Dirty())
}

func TestManagerRejectsCorruptStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte("Books:\nBorrowed by: Name: A Surname: B Personal Number: C\n"), 0o644))

	_, err := NewLibraryManager(context.Background(), ManagerOptions{StatePath: path})
	assert.ErrorIs(t, err, ErrCorruptRecord)

	// A second attempt fails the same way, not on the lock.
	_, err = NewLibraryManager(context.Background(), ManagerOptions{StatePath: path})
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestManagerStateLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.txt")
	first := newManager(t, path)

	start := time.Now()
	_, err := NewLibraryManager(context.Background(), ManagerOptions{
		StatePath:   path,
		LockTimeout: 250 * time.Millisecond,
	})
	assert.ErrorIs(t, err, ErrStateLocked)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)

	require.NoError(t, first.Close())
	second, err := NewLibraryManager(context.Background(), ManagerOptions{StatePath: path})
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestManagerBorrowRequiresCataloguedBook(t *testing.T) {
	mgr := newManager(t, filepath.Join(t.TempDir(), "catalog.txt"))
	mgr.AddBook("Dune", "Herbert")

	assert.ErrorIs(t, mgr.BorrowBook(nineteen, ada), ErrBookNotFound)
	_, ok := mgr.Borrower(nineteen)
	assert.False(t, ok)
	assert.Empty(t, mgr.Loans())
}

func TestManagerDetachedLoan(t *testing.T) {
	mgr := newManager(t, filepath.Join(t.TempDir(), "catalog.txt"))
	mgr.AddBook("Dune", "Herbert")
	mgr.AddBook("Dune", "Herbert")
	require.NoError(t, mgr.BorrowBook(dune, ada))

	require.NoError(t, mgr.RemoveBook(dune))
	_, detached := mgr.DetachedLoan(dune)
	assert.False(t, detached, "a copy is still catalogued")

	require.NoError(t, mgr.RemoveBook(dune))
	holder, detached := mgr.DetachedLoan(dune)
	require.True(t, detached)
	assert.Equal(t, ada, holder)

	require.NoError(t, mgr.Save())
	require.NoError(t, mgr.Load())
	_, ok := mgr.Borrower(dune)
	assert.False(t, ok)
}
