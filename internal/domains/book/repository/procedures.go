package repository

import (
	"context"
	"encoding/json"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/search"
)

const (
	procGetAllBooks = "sp_get_all_book_dynamic"
	procGetBookByID = "sp_get_book_by_id"

	searchRootTag = "Search"
)

type procBookRepository struct {
	executor *database.ProcExecutor
}

// NewProcBookRepository creates a ProcRepository over the procedure pool.
func NewProcBookRepository(executor *database.ProcExecutor) ProcRepository {
	return &procBookRepository{executor: executor}
}

func (r *procBookRepository) List(ctx context.Context, params map[string]string) (*search.Page, []model.BookResponse, error) {
	xmlParams := search.ParamsToXML(params, searchRootTag)

	page, err := r.executor.ExecuteListWithCount(ctx, procGetAllBooks, xmlParams)
	if err != nil {
		return nil, nil, err
	}

	var books []model.BookResponse
	if len(page.Result) > 0 {
		if err := json.Unmarshal(page.Result, &books); err != nil {
			return nil, nil, apperror.NewDecode("Failed to parse book list", err)
		}
	}

	return page, books, nil
}

func (r *procBookRepository) GetBySID(ctx context.Context, sid string) (*model.BookResponse, error) {
	raw, err := r.executor.ExecuteScalar(ctx, procGetBookByID, sid)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var book model.BookResponse
	if err := json.Unmarshal([]byte(raw), &book); err != nil {
		return nil, apperror.NewDecode("Failed to parse book details", err)
	}
	return &book, nil
}
