package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/search"
)

// fakeService returns canned results per operation.
type fakeService struct {
	page       *search.SearchPage[model.BookResponse]
	book       *model.BookResponse
	books      []model.BookResponse
	err        error
	lastParams map[string]string
}

func (f *fakeService) ListBooks(_ context.Context, params map[string]string) (*search.SearchPage[model.BookResponse], error) {
	f.lastParams = params
	return f.page, f.err
}

func (f *fakeService) GetBookBySID(context.Context, string) (*model.BookResponse, error) {
	return f.book, f.err
}

func (f *fakeService) InsertBooks(context.Context, []model.BookRequest) ([]model.BookResponse, error) {
	return f.books, f.err
}

func (f *fakeService) UpdateBook(context.Context, string, model.BookRequest) (*model.BookResponse, error) {
	return f.book, f.err
}

func (f *fakeService) BorrowBook(context.Context, string, string) (*model.BookResponse, error) {
	return f.book, f.err
}

func (f *fakeService) ReturnBook(context.Context, string, string) (*model.BookResponse, error) {
	return f.book, f.err
}

func (f *fakeService) DeleteBook(context.Context, string) error {
	return f.err
}

func newTestRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBookHandler(svc)

	r := gin.New()
	books := r.Group("/api/v1/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/:sid", h.GetBook)
		books.POST("", h.InsertBooks)
		books.PUT("/:sid", h.UpdateBook)
		books.POST("/:sid/borrow/:isbn", h.BorrowBook)
		books.POST("/:sid/return/:isbn", h.ReturnBook)
		books.DELETE("/:sid", h.DeleteBook)
	}
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
	} `json:"meta"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestListBooksHandler(t *testing.T) {
	t.Run("forwards filters and renders paging meta", func(t *testing.T) {
		svc := &fakeService{page: &search.SearchPage[model.BookResponse]{
			List: []model.BookResponse{{BookSID: "LIB-1", Title: "Dune"}},
			Meta: search.Meta{Page: 2, PageSize: 5, TotalResults: 42},
		}}
		r := newTestRouter(svc)

		w, env := doRequest(t, r, http.MethodGet, "/api/v1/books?title=Dune&pageStart=2&pageSize=5", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		require.NotNil(t, env.Meta)
		assert.Equal(t, 2, env.Meta.Page)
		assert.Equal(t, 5, env.Meta.Limit)
		assert.Equal(t, 42, env.Meta.Total)

		assert.Equal(t, map[string]string{
			"title":     "Dune",
			"pageStart": "2",
			"pageSize":  "5",
		}, svc.lastParams)
	})

	t.Run("blank query values are not forwarded", func(t *testing.T) {
		svc := &fakeService{page: &search.SearchPage[model.BookResponse]{}}
		r := newTestRouter(svc)

		_, _ = doRequest(t, r, http.MethodGet, "/api/v1/books?title=&author=X", nil)
		assert.Equal(t, map[string]string{"author": "X"}, svc.lastParams)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		svc := &fakeService{err: apperror.NewNotFound("No books found")}
		r := newTestRouter(svc)

		w, env := doRequest(t, r, http.MethodGet, "/api/v1/books", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
		assert.Equal(t, "No books found", env.Error.Message)
	})
}

func TestGetBookHandler(t *testing.T) {
	t.Run("success wraps the book", func(t *testing.T) {
		svc := &fakeService{book: &model.BookResponse{BookSID: "LIB-1", Title: "Dune"}}
		r := newTestRouter(svc)

		w, env := doRequest(t, r, http.MethodGet, "/api/v1/books/LIB-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)

		var book model.BookResponse
		require.NoError(t, json.Unmarshal(env.Data, &book))
		assert.Equal(t, "Dune", book.Title)
	})

	t.Run("unexpected errors hide detail", func(t *testing.T) {
		svc := &fakeService{err: assert.AnError}
		r := newTestRouter(svc)

		w, env := doRequest(t, r, http.MethodGet, "/api/v1/books/LIB-1", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, apperror.InternalMessage, env.Error.Message)
	})
}

func TestInsertBooksHandler(t *testing.T) {
	t.Run("invalid body is a 400", func(t *testing.T) {
		svc := &fakeService{}
		r := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/books", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("field validation failures are a 400", func(t *testing.T) {
		svc := &fakeService{}
		r := newTestRouter(svc)

		w, env := doRequest(t, r, http.MethodPost, "/api/v1/books",
			[]model.BookRequest{{Title: "", Author: "A"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
	})

	t.Run("created batch returns 201", func(t *testing.T) {
		svc := &fakeService{books: []model.BookResponse{{BookSID: "LIB-1"}}}
		r := newTestRouter(svc)

		w, env := doRequest(t, r, http.MethodPost, "/api/v1/books",
			[]model.BookRequest{{Title: "T", Author: "A"}})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)
	})

	t.Run("conflicts map to 409", func(t *testing.T) {
		svc := &fakeService{err: apperror.NewConflict("A book with the title 'T' already exists.")}
		r := newTestRouter(svc)

		w, env := doRequest(t, r, http.MethodPost, "/api/v1/books",
			[]model.BookRequest{{Title: "T", Author: "A"}})
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestBorrowReturnHandlers(t *testing.T) {
	t.Run("borrow passes path params through", func(t *testing.T) {
		svc := &fakeService{book: &model.BookResponse{BookSID: "LIB-1", BorrowedStatus: int(model.NotAvailable)}}
		r := newTestRouter(svc)

		w, env := doRequest(t, r, http.MethodPost, "/api/v1/books/LIB-1/borrow/123", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
	})

	t.Run("ineligible borrow maps to 404", func(t *testing.T) {
		svc := &fakeService{err: apperror.NewNotFound("Book with SID 'LIB-1' not available or already borrowed.")}
		r := newTestRouter(svc)

		w, _ := doRequest(t, r, http.MethodPost, "/api/v1/books/LIB-1/borrow/123", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteBookHandler(t *testing.T) {
	t.Run("success returns a message", func(t *testing.T) {
		svc := &fakeService{}
		r := newTestRouter(svc)

		w, env := doRequest(t, r, http.MethodDelete, "/api/v1/books/LIB-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
	})

	t.Run("ineligible delete maps to 400", func(t *testing.T) {
		svc := &fakeService{err: apperror.NewValidation("Book not found for deletion")}
		r := newTestRouter(svc)

		w, env := doRequest(t, r, http.MethodDelete, "/api/v1/books/LIB-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "Book not found for deletion", env.Error.Message)
	})
}
