package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) CreateReview(ctx context.Context, bookID string, userID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, bookID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) UpdateReview(ctx context.Context, reviewID string, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, reviewID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, reviewID string, userID string) error {
	args := m.Called(ctx, reviewID, userID)
	return args.Error(0)
}

func (m *MockReviewService) GetUserReviews(ctx context.Context, userID string) ([]entity.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func TestCreateReviewHandler_Success(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"
	bookID := primitive.NewObjectID()

	review := &entity.Review{ID: primitive.NewObjectID(), BookID: bookID, UserID: userID, Title: "Masterpiece", Rating: 5}

	mockService := new(MockReviewService)
	mockService.On("CreateReview", mock.Anything, bookID.Hex(), userID, mock.AnythingOfType("*entity.CreateReviewRequest")).Return(review, nil)

	h := NewReviewHandler(mockService)
	router.POST("/api/books/:id/reviews", authStub(userID), h.CreateReview)

	body := `{"title":"Masterpiece","text":"Loved every page.","rating":5}`
	req, _ := http.NewRequest(http.MethodPost, "/api/books/"+bookID.Hex()+"/reviews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateReviewHandler_BookNotFound(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"
	bookID := primitive.NewObjectID()

	mockService := new(MockReviewService)
	mockService.On("CreateReview", mock.Anything, bookID.Hex(), userID, mock.Anything).Return(nil, service.ErrBookNotFound)

	h := NewReviewHandler(mockService)
	router.POST("/api/books/:id/reviews", authStub(userID), h.CreateReview)

	body := `{"title":"x","text":"y","rating":3}`
	req, _ := http.NewRequest(http.MethodPost, "/api/books/"+bookID.Hex()+"/reviews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateReviewHandler_Duplicate(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"
	bookID := primitive.NewObjectID()

	mockService := new(MockReviewService)
	mockService.On("CreateReview", mock.Anything, bookID.Hex(), userID, mock.Anything).Return(nil, service.ErrDuplicateReview)

	h := NewReviewHandler(mockService)
	router.POST("/api/books/:id/reviews", authStub(userID), h.CreateReview)

	body := `{"title":"x","text":"y","rating":3}`
	req, _ := http.NewRequest(http.MethodPost, "/api/books/"+bookID.Hex()+"/reviews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response entity.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "You have already submitted a review for this book", response.Message)
}

func TestCreateReviewHandler_RatingOutOfRange(t *testing.T) {
	router := setupTestRouter()
	bookID := primitive.NewObjectID()

	mockService := new(MockReviewService)
	h := NewReviewHandler(mockService)
	router.POST("/api/books/:id/reviews", authStub("user-123"), h.CreateReview)

	body := `{"title":"x","text":"y","rating":6}`
	req, _ := http.NewRequest(http.MethodPost, "/api/books/"+bookID.Hex()+"/reviews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateReview")
}

func TestUpdateReviewHandler_Success(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"
	reviewID := primitive.NewObjectID()

	updated := &entity.Review{ID: reviewID, UserID: userID, Rating: 5, Text: "Updated text"}

	mockService := new(MockReviewService)
	mockService.On("UpdateReview", mock.Anything, reviewID.Hex(), userID, mock.Anything).Return(updated, nil)

	h := NewReviewHandler(mockService)
	router.PUT("/api/reviews/:id", authStub(userID), h.UpdateReview)

	body := `{"rating":5,"text":"Updated text"}`
	req, _ := http.NewRequest(http.MethodPut, "/api/reviews/"+reviewID.Hex(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateReviewHandler_NotFound(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"
	reviewID := primitive.NewObjectID()

	mockService := new(MockReviewService)
	mockService.On("UpdateReview", mock.Anything, reviewID.Hex(), userID, mock.Anything).Return(nil, service.ErrReviewNotFound)

	h := NewReviewHandler(mockService)
	router.PUT("/api/reviews/:id", authStub(userID), h.UpdateReview)

	body := `{"rating":5}`
	req, _ := http.NewRequest(http.MethodPut, "/api/reviews/"+reviewID.Hex(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateReviewHandler_NotOwnerRespondsUnauthorized(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"
	reviewID := primitive.NewObjectID()

	mockService := new(MockReviewService)
	mockService.On("UpdateReview", mock.Anything, reviewID.Hex(), userID, mock.Anything).Return(nil, service.ErrNotReviewOwner)

	h := NewReviewHandler(mockService)
	router.PUT("/api/reviews/:id", authStub(userID), h.UpdateReview)

	body := `{"rating":1}`
	req, _ := http.NewRequest(http.MethodPut, "/api/reviews/"+reviewID.Hex(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Чужой отзыв - 401 по контракту API
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteReviewHandler_Success(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"
	reviewID := primitive.NewObjectID()

	mockService := new(MockReviewService)
	mockService.On("DeleteReview", mock.Anything, reviewID.Hex(), userID).Return(nil)

	h := NewReviewHandler(mockService)
	router.DELETE("/api/reviews/:id", authStub(userID), h.DeleteReview)

	req, _ := http.NewRequest(http.MethodDelete, "/api/reviews/"+reviewID.Hex(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteReviewHandler_NotOwnerRespondsUnauthorized(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"
	reviewID := primitive.NewObjectID()

	mockService := new(MockReviewService)
	mockService.On("DeleteReview", mock.Anything, reviewID.Hex(), userID).Return(service.ErrNotReviewOwner)

	h := NewReviewHandler(mockService)
	router.DELETE("/api/reviews/:id", authStub(userID), h.DeleteReview)

	req, _ := http.NewRequest(http.MethodDelete, "/api/reviews/"+reviewID.Hex(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMyReviewsHandler_Success(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"

	reviews := []entity.Review{
		{ID: primitive.NewObjectID(), UserID: userID, Rating: 5},
		{ID: primitive.NewObjectID(), UserID: userID, Rating: 3},
	}

	mockService := new(MockReviewService)
	mockService.On("GetUserReviews", mock.Anything, userID).Return(reviews, nil)

	h := NewReviewHandler(mockService)
	router.GET("/api/reviews", authStub(userID), h.GetMyReviews)

	req, _ := http.NewRequest(http.MethodGet, "/api/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["count"])
}
