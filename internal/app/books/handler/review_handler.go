package handler

import (
	"context"
	"errors"
	"net/http"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/repository"
	"bookreviews/internal/app/books/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, bookID string, userID string, req *entity.CreateReviewRequest) (*entity.Review, error)
	UpdateReview(ctx context.Context, reviewID string, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, reviewID string, userID string) error
	GetUserReviews(ctx context.Context, userID string) ([]entity.Review, error)
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// CreateReview обрабатывает POST /api/books/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: formatValidationError(err)})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Message: "Book not found"})
			return
		}
		if errors.Is(err, service.ErrDuplicateReview) {
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: "You have already submitted a review for this book"})
			return
		}
		if errors.Is(err, repository.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: "Invalid book id"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: "Failed to create review"})
		return
	}

	c.JSON(http.StatusCreated, entity.DataResponse{Success: true, Data: review})
}

// UpdateReview обрабатывает PUT /api/reviews/:id
// Обновлять отзыв может только его автор
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: formatValidationError(err)})
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Message: "Review not found"})
			return
		}
		if errors.Is(err, service.ErrNotReviewOwner) {
			// Контракт API исторически отвечает 401, а не 403
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Message: "Not authorized to update this review"})
			return
		}
		if errors.Is(err, repository.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: "Invalid review id"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: "Failed to update review"})
		return
	}

	c.JSON(http.StatusOK, entity.DataResponse{Success: true, Data: review})
}

// DeleteReview обрабатывает DELETE /api/reviews/:id
// Удалять отзыв может только его автор
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Message: "Review not found"})
			return
		}
		if errors.Is(err, service.ErrNotReviewOwner) {
			// Контракт API исторически отвечает 401, а не 403
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Message: "Not authorized to delete this review"})
			return
		}
		if errors.Is(err, repository.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{Message: "Invalid review id"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: "Failed to delete review"})
		return
	}

	c.JSON(http.StatusOK, entity.DataResponse{Success: true, Data: gin.H{}})
}

// GetMyReviews обрабатывает GET /api/reviews
// Возвращает все отзывы аутентифицированного пользователя
func (h *ReviewHandler) GetMyReviews(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetUserReviews(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Message: "Failed to get reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(reviews),
		"data":    reviews,
	})
}
