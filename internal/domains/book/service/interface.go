package service

import (
	"context"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/search"
)

// BookService owns the inventory rules: SID assignment, duplicate checks,
// and the borrow/return/delete state machine.
type BookService interface {
	ListBooks(ctx context.Context, params map[string]string) (*search.SearchPage[model.BookResponse], error)
	GetBookBySID(ctx context.Context, sid string) (*model.BookResponse, error)
	InsertBooks(ctx context.Context, requests []model.BookRequest) ([]model.BookResponse, error)
	UpdateBook(ctx context.Context, sid string, request model.BookRequest) (*model.BookResponse, error)
	BorrowBook(ctx context.Context, sid, isbn string) (*model.BookResponse, error)
	ReturnBook(ctx context.Context, sid, isbn string) (*model.BookResponse, error)
	DeleteBook(ctx context.Context, sid string) error
}
