package service

import (
	"context"
	"fmt"
	"math"

	"bookreviews/internal/app/books/repository"
	"bookreviews/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingAggregator пересчитывает средний рейтинг книги по её отзывам
// Агрегация всегда идёт по текущему набору отзывов в хранилище, а не по
// инкрементальному счётчику: при параллельных мутациях побеждает последняя
// завершившаяся запись, и значение сходится к корректному
type RatingAggregator struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
}

// NewRatingAggregator создает новый агрегатор рейтингов
func NewRatingAggregator(
	reviewRepo repository.ReviewRepository,
	bookRepo repository.BookRepository,
) *RatingAggregator {
	return &RatingAggregator{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
	}
}

// Recompute считает среднее по всем отзывам книги и записывает его в книгу
// Среднее округляется до одного знака после запятой; без отзывов пишется 0
func (a *RatingAggregator) Recompute(ctx context.Context, bookID primitive.ObjectID) error {
	avg, count, err := a.reviewRepo.AverageRating(ctx, bookID)
	if err != nil {
		metrics.RecordRatingRecompute(false)
		return fmt.Errorf("failed to aggregate ratings for book %s: %w", bookID.Hex(), err)
	}

	rating := 0.0
	if count > 0 {
		rating = roundToTenth(avg)
	}

	if err := a.bookRepo.SetAverageRating(ctx, bookID, rating); err != nil {
		metrics.RecordRatingRecompute(false)
		return fmt.Errorf("failed to store average rating for book %s: %w", bookID.Hex(), err)
	}

	metrics.RecordRatingRecompute(true)
	return nil
}

// roundToTenth округляет до десятых, половинки - от нуля
func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
