package mocks

import (
	"context"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/query"
	"bookreviews/internal/app/books/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockBookRepository мок для BookRepository
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(ctx context.Context, book *entity.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Book), args.Error(1)
}

func (m *MockBookRepository) List(ctx context.Context, filter query.Filter, opts repository.ListOptions) ([]entity.Book, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Book), args.Error(1)
}

func (m *MockBookRepository) Count(ctx context.Context, filter query.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookRepository) Search(ctx context.Context, text string, skip, limit int) ([]entity.Book, error) {
	args := m.Called(ctx, text, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Book), args.Error(1)
}

func (m *MockBookRepository) SearchCount(ctx context.Context, text string) (int64, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookRepository) SetAverageRating(ctx context.Context, id primitive.ObjectID, rating float64) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

func (m *MockBookRepository) GenreStats(ctx context.Context) ([]entity.GenreStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GenreStat), args.Error(1)
}

func (m *MockBookRepository) AllIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByBook(ctx context.Context, bookID primitive.ObjectID, skip, limit int) ([]entity.Review, error) {
	args := m.Called(ctx, bookID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewRepository) CountByBook(ctx context.Context, bookID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) FindByUser(ctx context.Context, userID string) ([]entity.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewRepository) ExistsForBookAndUser(ctx context.Context, bookID primitive.ObjectID, userID string) (bool, error) {
	args := m.Called(ctx, bookID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) AverageRating(ctx context.Context, bookID primitive.ObjectID) (float64, int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(float64), args.Get(1).(int64), args.Error(2)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockGenreCache мок для кеша статистики жанров
type MockGenreCache struct {
	mock.Mock
}

func (m *MockGenreCache) GetGenreStats(ctx context.Context) ([]entity.GenreStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.GenreStat), args.Error(1)
}

func (m *MockGenreCache) SetGenreStats(ctx context.Context, stats []entity.GenreStat, ttl time.Duration) error {
	args := m.Called(ctx, stats, ttl)
	return args.Error(0)
}

func (m *MockGenreCache) DeleteGenreStats(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGenreCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRatingRecomputer мок для RatingRecomputer
type MockRatingRecomputer struct {
	mock.Mock
}

func (m *MockRatingRecomputer) Recompute(ctx context.Context, bookID primitive.ObjectID) error {
	args := m.Called(ctx, bookID)
	return args.Error(0)
}
