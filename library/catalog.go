package library

import (
	"cmp"
	"slices"
)

// Catalog holds the ordered book sequence and the active loans.
//
// A Catalog is not safe for concurrent use; callers sharing one must provide
// their own locking. The zero value is an empty catalog ready for use.
type Catalog struct {
	books []Book
	loans map[Book]Student
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{loans: make(map[Book]Student)}
}

// AddBook appends b to the sequence. Duplicates are allowed.
func (c *Catalog) AddBook(b Book) {
	c.books = append(c.books, b)
}

// RemoveBook removes the first entry equal to b and reports whether one was
// found. Loans keyed on b are left in place.
func (c *Catalog) RemoveBook(b Book) bool {
	i := slices.Index(c.books, b)
	if i < 0 {
		return false
	}
	c.books = slices.Delete(c.books, i, i+1)
	return true
}

// BorrowBook records a loan of b to s. It fails when b is already on loan.
// The book does not have to be in the sequence.
func (c *Catalog) BorrowBook(b Book, s Student) bool {
	if _, ok := c.loans[b]; ok {
		return false
	}
	if c.loans == nil {
		c.loans = make(map[Book]Student)
	}
	c.loans[b] = s
	return true
}

// ReturnBook ends the loan of b. It fails when b has no active loan.
func (c *Catalog) ReturnBook(b Book) bool {
	if _, ok := c.loans[b]; !ok {
		return false
	}
	delete(c.loans, b)
	return true
}

// Borrower returns the student holding b, if any.
func (c *Catalog) Borrower(b Book) (Student, bool) {
	s, ok := c.loans[b]
	return s, ok
}

// Books returns a copy of the book sequence in insertion order.
func (c *Catalog) Books() []Book {
	return slices.Clone(c.books)
}

// Len returns the number of entries in the book sequence.
func (c *Catalog) Len() int { return len(c.books) }

// Loans lists active loans: those whose book is in the sequence first, in
// sequence order, then orphaned loans sorted by title and author.
func (c *Catalog) Loans() []Loan {
	loans := make([]Loan, 0, len(c.loans))
	seen := make(map[Book]struct{}, len(c.loans))
	for _, b := range c.books {
		if _, dup := seen[b]; dup {
			continue
		}
		if s, ok := c.loans[b]; ok {
			seen[b] = struct{}{}
			loans = append(loans, Loan{Book: b, Student: s})
		}
	}

	var orphans []Loan
	for b, s := range c.loans {
		if _, ok := seen[b]; !ok {
			orphans = append(orphans, Loan{Book: b, Student: s, Orphaned: true})
		}
	}
	slices.SortFunc(orphans, func(a, b Loan) int {
		return cmp.Or(
			cmp.Compare(a.Book.Title, b.Book.Title),
			cmp.Compare(a.Book.Author, b.Book.Author),
		)
	})
	return append(loans, orphans...)
}

// Clear discards all books and loans.
func (c *Catalog) Clear() {
	c.books = nil
	c.loans = make(map[Book]Student)
}
