package handler

import (
	"errors"
	"net/http"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/query"
	"bookreviews/internal/app/books/service"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	bookService BookServiceInterface
}

func NewSearchHandler(bookService BookServiceInterface) *SearchHandler {
	return &SearchHandler{bookService: bookService}
}

// SearchBooks обрабатывает GET /api/search
// Параметр query обязателен; пустой результат - это 200 с пустым массивом
func (h *SearchHandler) SearchBooks(c *gin.Context) {
	pagination := query.NewPagination(c.Query("page"), c.Query("limit"))

	page, err := h.bookService.SearchBooks(c.Request.Context(), c.Query("query"), pagination)
	if err != nil {
		if errors.Is(err, service.ErrSearchQueryRequired) {
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: "Please provide a search query"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: "Failed to search books"})
		return
	}

	c.JSON(http.StatusOK, entity.ListResponse{
		Success:    true,
		Count:      len(page.Books),
		Pagination: page.Pagination,
		Data:       page.Books,
	})
}
