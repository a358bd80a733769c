package model

import (
	"library-backend/internal/shared/utils"
)

// Availability is the borrow flag on a book row.
type Availability int

const (
	Available    Availability = 1
	NotAvailable Availability = 2
)

// Status is the soft-delete flag. Rows are never physically removed.
type Status int

const (
	StatusDeleted    Status = 3
	StatusNotDeleted Status = 4
)

// SIDPrefix precedes the random token in every generated book SID.
const SIDPrefix = "LIB"

// Book is the persisted inventory row.
//
// BookSID is the externally visible stable identifier, assigned exactly once
// at creation and never accepted from a caller. BookID is the store-assigned
// surrogate key.
type Book struct {
	BookID         int          `db:"book_id" json:"-"`
	BookSID        string       `db:"book_sid" json:"bookSid"`
	Title          string       `db:"title" json:"title"`
	Author         string       `db:"author" json:"author"`
	ISBN           *string      `db:"isbn" json:"isbn,omitempty"`
	PublishedYear  *int         `db:"published_year" json:"publishedYear,omitempty"`
	BorrowedStatus Availability `db:"borrowed_status" json:"borrowedStatus"`
	Status         Status       `db:"status" json:"status"`
}

// Entity capability set for the generic repository.

func (Book) TableName() string { return "books" }

func (Book) KeyColumn() string { return "book_id" }

func (b Book) KeyValue() any { return b.BookID }

func (Book) DataColumns() []string {
	return []string{"book_sid", "title", "author", "isbn", "published_year", "borrowed_status", "status"}
}

func (b Book) DataValues() []any {
	return utils.StructArgs(b, "BookSID", "Title", "Author", "ISBN", "PublishedYear", "BorrowedStatus", "Status")
}
