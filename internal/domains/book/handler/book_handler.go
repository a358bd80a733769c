package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/service"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/search"
)

type BookHandler struct {
	service service.BookService
}

func NewBookHandler(service service.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// searchParamKeys are the query parameters forwarded to the search procedure.
var searchParamKeys = []string{"title", "author", "isbn", search.ParamPageStart, search.ParamPageSize}

// ListBooks handles GET /api/v1/books
func (h *BookHandler) ListBooks(c *gin.Context) {
	params := make(map[string]string)
	for _, key := range searchParamKeys {
		if v := c.Query(key); v != "" {
			params[key] = v
		}
	}

	page, err := h.service.ListBooks(c.Request.Context(), params)
	if model.HandleBookError(c, err) {
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, page.List, &response.Meta{
		Page:  page.Meta.Page,
		Limit: page.Meta.PageSize,
		Total: page.Meta.TotalResults,
	})
}

// GetBook handles GET /api/v1/books/:sid
func (h *BookHandler) GetBook(c *gin.Context) {
	sid := c.Param("sid")

	book, err := h.service.GetBookBySID(c.Request.Context(), sid)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, book)
}

// InsertBooks handles POST /api/v1/books
func (h *BookHandler) InsertBooks(c *gin.Context) {
	var requests []model.BookRequest
	if err := c.ShouldBindJSON(&requests); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	for _, req := range requests {
		if err := req.Validate(); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	books, err := h.service.InsertBooks(c.Request.Context(), requests)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, books)
}

// UpdateBook handles PUT /api/v1/books/:sid
func (h *BookHandler) UpdateBook(c *gin.Context) {
	sid := c.Param("sid")

	var request model.BookRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := request.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), sid, request)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, book)
}

// BorrowBook handles POST /api/v1/books/:sid/borrow/:isbn
func (h *BookHandler) BorrowBook(c *gin.Context) {
	book, err := h.service.BorrowBook(c.Request.Context(), c.Param("sid"), c.Param("isbn"))
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, book)
}

// ReturnBook handles POST /api/v1/books/:sid/return/:isbn
func (h *BookHandler) ReturnBook(c *gin.Context) {
	book, err := h.service.ReturnBook(c.Request.Context(), c.Param("sid"), c.Param("isbn"))
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, book)
}

// DeleteBook handles DELETE /api/v1/books/:sid
func (h *BookHandler) DeleteBook(c *gin.Context) {
	err := h.service.DeleteBook(c.Request.Context(), c.Param("sid"))
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Book deleted successfully"})
}
