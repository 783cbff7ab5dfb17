package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/query"
	"bookreviews/internal/app/books/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) CreateBook(ctx context.Context, userID string, req *entity.CreateBookRequest) (*entity.Book, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Book), args.Error(1)
}

func (m *MockBookService) ListBooks(ctx context.Context, params url.Values) (*service.BookPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookPage), args.Error(1)
}

func (m *MockBookService) SearchBooks(ctx context.Context, text string, pagination query.Pagination) (*service.BookPage, error) {
	args := m.Called(ctx, text, pagination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookPage), args.Error(1)
}

func (m *MockBookService) GetBook(ctx context.Context, bookID string, pagination query.Pagination) (*service.BookDetail, error) {
	args := m.Called(ctx, bookID, pagination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookDetail), args.Error(1)
}

func (m *MockBookService) GenreStats(ctx context.Context) ([]entity.GenreStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GenreStat), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// authStub подставляет user_id так же, как это делает auth middleware
func authStub(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func TestCreateBookHandler_Success(t *testing.T) {
	router := setupTestRouter()
	userID := "user-123"

	book := &entity.Book{ID: primitive.NewObjectID(), Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", UserID: userID}

	mockService := new(MockBookService)
	mockService.On("CreateBook", mock.Anything, userID, mock.AnythingOfType("*entity.CreateBookRequest")).Return(book, nil)

	h := NewBookHandler(mockService)
	router.POST("/api/books", authStub(userID), h.CreateBook)

	body := `{"title":"Dune","author":"Frank Herbert","description":"Desert planet politics","genre":"Science Fiction","publicationYear":1965}`
	req, _ := http.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response entity.DataResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
}

func TestCreateBookHandler_Unauthorized(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockBookService)
	h := NewBookHandler(mockService)
	router.POST("/api/books", h.CreateBook)

	body := `{"title":"Dune","author":"Frank Herbert","genre":"Science Fiction"}`
	req, _ := http.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "CreateBook")
}

func TestCreateBookHandler_InvalidGenre(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockBookService)
	h := NewBookHandler(mockService)
	router.POST("/api/books", authStub("user-123"), h.CreateBook)

	body := `{"title":"Dune","author":"Frank Herbert","genre":"Cooking"}`
	req, _ := http.NewRequest(http.MethodPost, "/api/books", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBook")
}

func TestGetBooksHandler_Success(t *testing.T) {
	router := setupTestRouter()

	page := &service.BookPage{
		Books: []entity.Book{
			{ID: primitive.NewObjectID(), Title: "Dune"},
			{ID: primitive.NewObjectID(), Title: "Hyperion"},
		},
		Pagination: query.PageInfo{Next: &query.PageRef{Page: 2, Limit: 2}},
	}

	mockService := new(MockBookService)
	mockService.On("ListBooks", mock.Anything, mock.Anything).Return(page, nil)

	h := NewBookHandler(mockService)
	router.GET("/api/books", h.GetBooks)

	req, _ := http.NewRequest(http.MethodGet, "/api/books?genre=Fiction&limit=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ListResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
	assert.Equal(t, 2, response.Count)
	assert.NotNil(t, response.Pagination.Next)
}

func TestGetBooksHandler_InvalidQuery(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockBookService)
	mockService.On("ListBooks", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidQuery)

	h := NewBookHandler(mockService)
	router.GET("/api/books", h.GetBooks)

	req, _ := http.NewRequest(http.MethodGet, "/api/books?publicationYear[where]=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBookHandler_Success(t *testing.T) {
	router := setupTestRouter()
	bookID := primitive.NewObjectID()

	detail := &service.BookDetail{
		Book:        &entity.Book{ID: bookID, Title: "Dune", AverageRating: 4.3},
		Reviews:     []entity.Review{{ID: primitive.NewObjectID(), BookID: bookID, Rating: 5}},
		ReviewCount: 1,
	}

	mockService := new(MockBookService)
	mockService.On("GetBook", mock.Anything, bookID.Hex(), mock.Anything).Return(detail, nil)

	h := NewBookHandler(mockService)
	router.GET("/api/books/:id", h.GetBook)

	req, _ := http.NewRequest(http.MethodGet, "/api/books/"+bookID.Hex(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.BookDetailResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
	assert.Equal(t, int64(1), response.ReviewCount)
}

func TestGetBookHandler_NotFound(t *testing.T) {
	router := setupTestRouter()
	bookID := primitive.NewObjectID()

	mockService := new(MockBookService)
	mockService.On("GetBook", mock.Anything, bookID.Hex(), mock.Anything).Return(nil, service.ErrBookNotFound)

	h := NewBookHandler(mockService)
	router.GET("/api/books/:id", h.GetBook)

	req, _ := http.NewRequest(http.MethodGet, "/api/books/"+bookID.Hex(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetGenreStatsHandler_Success(t *testing.T) {
	router := setupTestRouter()

	stats := []entity.GenreStat{
		{Genre: "Fiction", Count: 7, AverageRating: 4.1},
		{Genre: "Fantasy", Count: 3, AverageRating: 4.5},
	}

	mockService := new(MockBookService)
	mockService.On("GenreStats", mock.Anything).Return(stats, nil)

	h := NewBookHandler(mockService)
	router.GET("/api/books/genres", h.GetGenreStats)

	req, _ := http.NewRequest(http.MethodGet, "/api/books/genres", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["count"])
}
