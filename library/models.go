package library

import "fmt"

// Book identifies a catalog entry. Two books with the same title and author
// are the same entry for lookups and loans.
type Book struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

func (b Book) String() string {
	return fmt.Sprintf("%q by %s", b.Title, b.Author)
}

// Student is the borrower recorded on a loan.
type Student struct {
	Name           string `json:"name"`
	Surname        string `json:"surname"`
	PersonalNumber string `json:"personal_number"`
}

func (s Student) String() string {
	return fmt.Sprintf("%s %s (%s)", s.Name, s.Surname, s.PersonalNumber)
}

// Loan pairs a borrowed book with the student holding it.
type Loan struct {
	Book    Book    `json:"book"`
	Student Student `json:"student"`
	// Orphaned is set when the book is no longer in the catalog sequence.
	Orphaned bool `json:"orphaned,omitempty"`
}
