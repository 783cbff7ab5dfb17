package repository

import (
	"context"
	"errors"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrBookNotFound    = errors.New("book not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("duplicate review for book and user")
	ErrInvalidID       = errors.New("invalid object id")
)

// ListOptions - параметры постраничной выборки книг
type ListOptions struct {
	Sort       bson.D
	Projection bson.D
	Skip       int
	Limit      int
}

// BookRepository определяет методы работы с книгами в MongoDB
type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	List(ctx context.Context, filter query.Filter, opts ListOptions) ([]entity.Book, error)
	Count(ctx context.Context, filter query.Filter) (int64, error)
	Search(ctx context.Context, text string, skip, limit int) ([]entity.Book, error)
	SearchCount(ctx context.Context, text string) (int64, error)
	SetAverageRating(ctx context.Context, id primitive.ObjectID, rating float64) error
	GenreStats(ctx context.Context) ([]entity.GenreStat, error)
	AllIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

// ReviewRepository определяет методы работы с отзывами в MongoDB
// Уникальность пары (book_id, user_id) обеспечивает индекс в коллекции
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	FindByBook(ctx context.Context, bookID primitive.ObjectID, skip, limit int) ([]entity.Review, error)
	CountByBook(ctx context.Context, bookID primitive.ObjectID) (int64, error)
	FindByUser(ctx context.Context, userID string) ([]entity.Review, error)
	ExistsForBookAndUser(ctx context.Context, bookID primitive.ObjectID, userID string) (bool, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AverageRating(ctx context.Context, bookID primitive.ObjectID) (float64, int64, error)
}
