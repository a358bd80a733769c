package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BookRequest is the write payload for insert and update. The SID is never
// part of it: the service assigns SIDs at creation and they are immutable.
type BookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	PublishedYear *int   `json:"publishedYear"`
}

// Validate enforces the request-boundary rules. The service independently
// re-checks the invariants it owns (presence, duplicates, eligibility).
func (r BookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("Title is required"),
			validation.Length(0, 50).Error("Title must not exceed 50 characters")),
		validation.Field(&r.Author,
			validation.Required.Error("Author is required"),
			validation.Length(0, 50).Error("Author name must not exceed 50 characters")),
		validation.Field(&r.ISBN,
			validation.Length(0, 50).Error("ISBN must not exceed 50 characters")),
		validation.Field(&r.PublishedYear,
			validation.Min(1000).Error("Published year must be between 1000 and 2100"),
			validation.Max(2100).Error("Published year must be between 1000 and 2100")),
	)
}

// BookResponse is what every operation returns for a book.
type BookResponse struct {
	BookSID        string `json:"bookSid"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	ISBN           string `json:"isbn,omitempty"`
	PublishedYear  *int   `json:"publishedYear,omitempty"`
	BorrowedStatus int    `json:"borrowedStatus"`
	Status         int    `json:"status"`
}

// ToResponse maps the entity onto the wire shape.
func ToResponse(b Book) BookResponse {
	resp := BookResponse{
		BookSID:        b.BookSID,
		Title:          b.Title,
		Author:         b.Author,
		PublishedYear:  b.PublishedYear,
		BorrowedStatus: int(b.BorrowedStatus),
		Status:         int(b.Status),
	}
	if b.ISBN != nil {
		resp.ISBN = *b.ISBN
	}
	return resp
}

// ToEntity builds a new entity from a request. SID and status flags are set
// by the caller, not taken from the request.
func ToEntity(r BookRequest) Book {
	b := Book{
		Title:         r.Title,
		Author:        r.Author,
		PublishedYear: r.PublishedYear,
	}
	if r.ISBN != "" {
		isbn := r.ISBN
		b.ISBN = &isbn
	}
	return b
}
