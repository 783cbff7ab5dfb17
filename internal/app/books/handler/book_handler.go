package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/query"
	"bookreviews/internal/app/books/repository"
	"bookreviews/internal/app/books/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type BookServiceInterface interface {
	CreateBook(ctx context.Context, userID string, req *entity.CreateBookRequest) (*entity.Book, error)
	ListBooks(ctx context.Context, params url.Values) (*service.BookPage, error)
	SearchBooks(ctx context.Context, text string, pagination query.Pagination) (*service.BookPage, error)
	GetBook(ctx context.Context, bookID string, pagination query.Pagination) (*service.BookDetail, error)
	GenreStats(ctx context.Context) ([]entity.GenreStat, error)
}

type BookHandler struct {
	bookService BookServiceInterface
	validator   *validator.Validate
}

func NewBookHandler(bookService BookServiceInterface) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		validator:   validator.New(),
	}
}

// CreateBook обрабатывает POST /api/books
func (h *BookHandler) CreateBook(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req entity.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: formatValidationError(err)})
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: "Failed to create book"})
		return
	}

	c.JSON(http.StatusCreated, entity.DataResponse{Success: true, Data: book})
}

// GetBooks обрабатывает GET /api/books
// Поддерживает фильтры field=value и field[op]=value, а также
// select, sort, page и limit
func (h *BookHandler) GetBooks(c *gin.Context) {
	page, err := h.bookService.ListBooks(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: "Failed to get books"})
		return
	}

	c.JSON(http.StatusOK, entity.ListResponse{
		Success:    true,
		Count:      len(page.Books),
		Pagination: page.Pagination,
		Data:       page.Books,
	})
}

// GetBook обрабатывает GET /api/books/:id
// Возвращает книгу, страницу её отзывов и общее количество отзывов
func (h *BookHandler) GetBook(c *gin.Context) {
	pagination := query.NewPagination(c.Query("page"), c.Query("limit"))

	detail, err := h.bookService.GetBook(c.Request.Context(), c.Param("id"), pagination)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Message: "Book not found"})
			return
		}
		if errors.Is(err, repository.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: "Invalid book id"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: "Failed to get book"})
		return
	}

	c.JSON(http.StatusOK, entity.BookDetailResponse{
		Success:     true,
		Data:        detail.Book,
		Reviews:     detail.Reviews,
		ReviewCount: detail.ReviewCount,
		Pagination:  detail.Pagination,
	})
}

// GetGenreStats обрабатывает GET /api/books/genres
func (h *BookHandler) GetGenreStats(c *gin.Context) {
	stats, err := h.bookService.GenreStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: "Failed to get genre stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(stats),
		"data":    stats,
	})
}

// callerID извлекает идентификатор пользователя, добавленный auth middleware
func callerID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Message: "Not authorized to access this route"})
		return "", false
	}

	userIDStr, ok := userID.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: "Invalid user id"})
		return "", false
	}

	return userIDStr, true
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
