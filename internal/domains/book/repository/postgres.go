package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/apperror"
	"library-backend/pkg/database"
)

type postgresBookRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookRepository creates an EntityRepository backed by the main
// connection pool.
func NewPostgresBookRepository(pool *pgxpool.Pool) EntityRepository {
	return &postgresBookRepository{pool: pool}
}

// scope opens a fresh unit-of-work for a single call. Each read or staged
// write owns its own scope, matching one-request-one-context usage.
func (r *postgresBookRepository) scope() *database.UnitOfWork {
	return database.NewUnitOfWork(r.pool)
}

func (r *postgresBookRepository) FindByTitle(ctx context.Context, title string) ([]model.Book, error) {
	uow := r.scope()
	defer uow.Close()

	repo := database.GetRepository[model.Book](uow)
	return repo.GetAll(ctx, database.Where("title = $1", title))
}

func (r *postgresBookRepository) FindByISBN(ctx context.Context, isbn string) ([]model.Book, error) {
	uow := r.scope()
	defer uow.Close()

	repo := database.GetRepository[model.Book](uow)
	return repo.GetAll(ctx, database.Where("isbn = $1", isbn))
}

func (r *postgresBookRepository) FindEligible(ctx context.Context, sid string, isbn *string, borrowed model.Availability, status model.Status) (*model.Book, error) {
	uow := r.scope()
	defer uow.Close()

	repo := database.GetRepository[model.Book](uow)

	preds := []database.Predicate{
		database.Where("book_sid = $1", sid),
		database.Where("borrowed_status = $1 AND status = $2", borrowed, status),
	}
	if isbn != nil {
		preds = append(preds, database.Where("isbn = $1", *isbn))
	}

	return repo.SingleOrDefault(ctx, preds...)
}

func (r *postgresBookRepository) InsertBatch(ctx context.Context, books []model.Book) (int64, error) {
	uow := r.scope()
	defer uow.Close()

	repo := database.GetRepository[model.Book](uow)
	for i := range books {
		repo.Insert(books[i])
	}

	affected, err := uow.Commit(ctx)
	if err != nil {
		return 0, writeFailure("insert books", err)
	}
	return affected, nil
}

func (r *postgresBookRepository) Update(ctx context.Context, book model.Book) (int64, error) {
	uow := r.scope()
	defer uow.Close()

	repo := database.GetRepository[model.Book](uow)
	repo.Update(book)

	affected, err := uow.Commit(ctx)
	if err != nil {
		return 0, writeFailure(fmt.Sprintf("update book %s", book.BookSID), err)
	}
	return affected, nil
}

// writeFailure classifies a failed staged commit. Unique violations stay
// raw so the service can report the duplicate; anything else (connectivity,
// constraint checks, transaction begin/commit) is a storage error.
func writeFailure(op string, err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return apperror.NewStorage("Failed to save book data", err)
}

func (r *postgresBookRepository) UpdateDirect(ctx context.Context, book model.Book) error {
	query := `
		UPDATE books
		SET title = $1, author = $2, isbn = $3, published_year = $4,
		    borrowed_status = $5, status = $6
		WHERE book_id = $7`

	_, err := r.pool.Exec(ctx, query,
		book.Title, book.Author, book.ISBN, book.PublishedYear,
		book.BorrowedStatus, book.Status, book.BookID,
	)
	if err != nil {
		return fmt.Errorf("update book %s: %w", book.BookSID, err)
	}
	return nil
}
