package library

import "errors"

var (
	// ErrStateIO is returned when the state file cannot be opened, read or written.
	ErrStateIO = errors.New("state file i/o failure")

	// ErrCorruptRecord is returned when a title or borrower line cannot be parsed.
	ErrCorruptRecord = errors.New("corrupt state record")

	// ErrBookNotFound is returned when removing a book that is not in the catalog.
	ErrBookNotFound = errors.New("book not found")

	// ErrAlreadyBorrowed is returned when borrowing a book that is already on loan.
	ErrAlreadyBorrowed = errors.New("book already borrowed")

	// ErrNotBorrowed is returned when returning a book that has no active loan.
	ErrNotBorrowed = errors.New("book is not borrowed")

	// ErrStateLocked is returned when another process holds the state file lock.
	ErrStateLocked = errors.New("state file is locked by another process")
)
