package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/search"
	"library-backend/pkg/cache"
	"library-backend/pkg/database"
)

const (
	cacheKeyListPrefix   = "books:list:"
	cacheKeyDetailPrefix = "books:detail:"
	cacheTTL             = time.Hour
)

type bookService struct {
	books repository.EntityRepository
	procs repository.ProcRepository
	cache cache.Cache
}

// NewBookService wires the two data paths and the cache into one service.
func NewBookService(books repository.EntityRepository, procs repository.ProcRepository, c cache.Cache) BookService {
	return &bookService{books: books, procs: procs, cache: c}
}

func (s *bookService) ListBooks(ctx context.Context, params map[string]string) (*search.SearchPage[model.BookResponse], error) {
	cacheKey := listCacheKey(params)

	var cached search.SearchPage[model.BookResponse]
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		log.Debug().Str("cache_key", cacheKey).Msg("Book list served from cache")
		return &cached, nil
	}

	page, books, err := s.procs.List(ctx, params)
	if err != nil {
		return nil, s.fail(err, "Failed to list books")
	}
	if len(books) == 0 {
		return nil, apperror.NewNotFound("No books found")
	}

	result := search.BindSearchPage(params, books)
	result.Meta.TotalResults = page.Meta.TotalResults

	if err := s.cache.Set(ctx, cacheKey, result, cacheTTL); err != nil {
		log.Warn().Err(err).Str("cache_key", cacheKey).Msg("Failed to cache book list")
	}

	log.Info().Int("count", len(books)).Int("total", result.Meta.TotalResults).Msg("Books listed")
	return &result, nil
}

func (s *bookService) GetBookBySID(ctx context.Context, sid string) (*model.BookResponse, error) {
	cacheKey := cacheKeyDetailPrefix + sid

	var cached model.BookResponse
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		log.Debug().Str("book_sid", sid).Msg("Book detail served from cache")
		return &cached, nil
	}

	book, err := s.procs.GetBySID(ctx, sid)
	if err != nil {
		return nil, s.fail(err, "Failed to get book")
	}
	if book == nil {
		return nil, apperror.NewNotFound(fmt.Sprintf("Book with SID '%s' not found", sid))
	}

	if err := s.cache.Set(ctx, cacheKey, book, cacheTTL); err != nil {
		log.Warn().Err(err).Str("book_sid", sid).Msg("Failed to cache book detail")
	}

	return book, nil
}

func (s *bookService) InsertBooks(ctx context.Context, requests []model.BookRequest) ([]model.BookResponse, error) {
	if len(requests) == 0 {
		return nil, apperror.NewValidation("Book list cannot be empty.")
	}

	books := make([]model.Book, 0, len(requests))
	for _, req := range requests {
		if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" {
			return nil, apperror.NewValidation("Book Title and Author are required.")
		}

		existing, err := s.books.FindByTitle(ctx, req.Title)
		if err != nil {
			return nil, s.fail(err, "Failed to check title uniqueness")
		}
		if len(existing) > 0 {
			return nil, apperror.NewConflict(fmt.Sprintf("A book with the title '%s' already exists.", req.Title))
		}

		if req.ISBN != "" {
			existing, err = s.books.FindByISBN(ctx, req.ISBN)
			if err != nil {
				return nil, s.fail(err, "Failed to check ISBN uniqueness")
			}
			if len(existing) > 0 {
				return nil, apperror.NewConflict(fmt.Sprintf("A book with the ISBN '%s' already exists.", req.ISBN))
			}
		}

		book := model.ToEntity(req)
		book.BookSID = model.SIDPrefix + uuid.NewString()
		book.BorrowedStatus = model.Available
		book.Status = model.StatusNotDeleted
		books = append(books, book)
	}

	if _, err := s.books.InsertBatch(ctx, books); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.NewConflict("A book with the same title or ISBN already exists.")
		}
		return nil, s.fail(err, "Failed to insert books")
	}

	s.invalidateLists(ctx)

	responses := make([]model.BookResponse, 0, len(books))
	for _, b := range books {
		responses = append(responses, model.ToResponse(b))
	}

	log.Info().Int("count", len(responses)).Msg("Books inserted")
	return responses, nil
}

func (s *bookService) UpdateBook(ctx context.Context, sid string, request model.BookRequest) (*model.BookResponse, error) {
	book, err := s.books.FindEligible(ctx, sid, nil, model.Available, model.StatusNotDeleted)
	if err != nil {
		return nil, s.fail(err, "Failed to load book for update")
	}
	if book == nil {
		return nil, apperror.NewNotFound(fmt.Sprintf("Book with SID '%s' not found or unavailable for update.", sid))
	}

	book.Title = request.Title
	book.Author = request.Author
	book.PublishedYear = request.PublishedYear
	book.ISBN = nil
	if request.ISBN != "" {
		isbn := request.ISBN
		book.ISBN = &isbn
	}
	book.BorrowedStatus = model.Available
	book.Status = model.StatusNotDeleted

	if _, err := s.books.Update(ctx, *book); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.NewConflict("A book with the same title or ISBN already exists.")
		}
		return nil, s.fail(err, "Failed to update book")
	}

	s.invalidate(ctx, sid)

	resp := model.ToResponse(*book)
	log.Info().Str("book_sid", sid).Msg("Book updated")
	return &resp, nil
}

func (s *bookService) BorrowBook(ctx context.Context, sid, isbn string) (*model.BookResponse, error) {
	book, err := s.books.FindEligible(ctx, sid, &isbn, model.Available, model.StatusNotDeleted)
	if err != nil {
		return nil, s.fail(err, "Failed to load book for borrowing")
	}
	if book == nil {
		return nil, apperror.NewNotFound(fmt.Sprintf("Book with SID '%s' not available or already borrowed.", sid))
	}

	book.BorrowedStatus = model.NotAvailable
	if err := s.books.UpdateDirect(ctx, *book); err != nil {
		return nil, s.fail(err, "Failed to borrow book")
	}

	s.invalidate(ctx, sid)

	resp := model.ToResponse(*book)
	log.Info().Str("book_sid", sid).Msg("Book borrowed")
	return &resp, nil
}

func (s *bookService) ReturnBook(ctx context.Context, sid, isbn string) (*model.BookResponse, error) {
	book, err := s.books.FindEligible(ctx, sid, &isbn, model.NotAvailable, model.StatusNotDeleted)
	if err != nil {
		return nil, s.fail(err, "Failed to load book for returning")
	}
	if book == nil {
		return nil, apperror.NewNotFound(fmt.Sprintf("Book with SID '%s' not found or already returned.", sid))
	}

	book.BorrowedStatus = model.Available
	if err := s.books.UpdateDirect(ctx, *book); err != nil {
		return nil, s.fail(err, "Failed to return book")
	}

	s.invalidate(ctx, sid)

	resp := model.ToResponse(*book)
	log.Info().Str("book_sid", sid).Msg("Book returned")
	return &resp, nil
}

// DeleteBook marks a book deleted. Only an available, not-yet-deleted book
// qualifies; an ineligible SID is reported as a validation failure, and
// storage errors are passed through as-is.
func (s *bookService) DeleteBook(ctx context.Context, sid string) error {
	book, err := s.books.FindEligible(ctx, sid, nil, model.Available, model.StatusNotDeleted)
	if err != nil {
		return err
	}
	if book == nil {
		return apperror.NewValidation("Book not found for deletion")
	}

	book.Status = model.StatusDeleted
	if err := s.books.UpdateDirect(ctx, *book); err != nil {
		return err
	}

	s.invalidate(ctx, sid)

	log.Info().Str("book_sid", sid).Msg("Book deleted")
	return nil
}

// fail logs known failures at warn level and passes them through, and wraps
// anything unexpected into the generic internal error.
func (s *bookService) fail(err error, msg string) error {
	if ae := apperror.From(err); ae != nil {
		log.Warn().Err(err).Msg(msg)
		return err
	}
	log.Error().Err(err).Msg(msg)
	return apperror.NewInternal(err)
}

func (s *bookService) invalidate(ctx context.Context, sid string) {
	s.invalidateLists(ctx)
	if err := s.cache.Delete(ctx, cacheKeyDetailPrefix+sid); err != nil {
		log.Warn().Err(err).Str("book_sid", sid).Msg("Failed to invalidate book detail cache")
	}
}

func (s *bookService) invalidateLists(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, cacheKeyListPrefix+"*"); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate book list cache")
	}
}

// listCacheKey derives a stable key from the search parameters.
func listCacheKey(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
		b.WriteByte('&')
	}
	sum := md5.Sum([]byte(b.String()))
	return cacheKeyListPrefix + hex.EncodeToString(sum[:])
}
