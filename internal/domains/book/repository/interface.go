package repository

import (
	"context"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/search"
)

// EntityRepository is the entity-tracked data path: predicate-filtered reads
// plus writes that either stage through a unit-of-work scope (InsertBatch,
// Update) or hit the pool immediately (UpdateDirect).
type EntityRepository interface {
	FindByTitle(ctx context.Context, title string) ([]model.Book, error)
	FindByISBN(ctx context.Context, isbn string) ([]model.Book, error)

	// FindEligible returns the first row matching sid plus the given status
	// flags, or nil. A non-nil isbn narrows the match to that exact ISBN.
	FindEligible(ctx context.Context, sid string, isbn *string, borrowed model.Availability, status model.Status) (*model.Book, error)

	// InsertBatch stages all rows into one repository scope and commits them
	// as a single atomic write.
	InsertBatch(ctx context.Context, books []model.Book) (int64, error)

	// Update stages a full-row overwrite and commits it.
	Update(ctx context.Context, book model.Book) (int64, error)

	// UpdateDirect writes the row immediately, bypassing staging. Used by
	// the borrow/return/delete transitions.
	UpdateDirect(ctx context.Context, book model.Book) error
}

// ProcRepository is the stored-procedure data path used by the read side.
type ProcRepository interface {
	// List calls the dynamic search procedure with an XML parameter envelope
	// and decodes the JSON row payload.
	List(ctx context.Context, params map[string]string) (*search.Page, []model.BookResponse, error)

	// GetBySID fetches one book as JSON. Returns nil when the procedure
	// yields nothing.
	GetBySID(ctx context.Context, sid string) (*model.BookResponse, error)
}
