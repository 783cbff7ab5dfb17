package service

import (
	"context"
	"errors"
	"testing"

	"bookreviews/internal/app/books/repository/mocks"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecompute_RoundsToOneDecimal(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	bookRepo := new(mocks.MockBookRepository)
	aggregator := NewRatingAggregator(reviewRepo, bookRepo)

	ctx := context.Background()
	bookID := primitive.NewObjectID()

	// Три отзыва 4+4+5 дают 4.333..., округляем до 4.3
	reviewRepo.On("AverageRating", ctx, bookID).Return(13.0/3.0, int64(3), nil)
	bookRepo.On("SetAverageRating", ctx, bookID, 4.3).Return(nil)

	err := aggregator.Recompute(ctx, bookID)

	assert.NoError(t, err)
	bookRepo.AssertExpectations(t)
}

func TestRecompute_HalfRoundsAwayFromZero(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	bookRepo := new(mocks.MockBookRepository)
	aggregator := NewRatingAggregator(reviewRepo, bookRepo)

	ctx := context.Background()
	bookID := primitive.NewObjectID()

	// 4+5+4+4 = 17/4 = 4.25 -> 4.3
	reviewRepo.On("AverageRating", ctx, bookID).Return(4.25, int64(4), nil)
	bookRepo.On("SetAverageRating", ctx, bookID, 4.3).Return(nil)

	err := aggregator.Recompute(ctx, bookID)

	assert.NoError(t, err)
	bookRepo.AssertExpectations(t)
}

func TestRecompute_NoReviewsWritesZero(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	bookRepo := new(mocks.MockBookRepository)
	aggregator := NewRatingAggregator(reviewRepo, bookRepo)

	ctx := context.Background()
	bookID := primitive.NewObjectID()

	reviewRepo.On("AverageRating", ctx, bookID).Return(0.0, int64(0), nil)
	bookRepo.On("SetAverageRating", ctx, bookID, 0.0).Return(nil)

	err := aggregator.Recompute(ctx, bookID)

	assert.NoError(t, err)
	bookRepo.AssertExpectations(t)
}

func TestRecompute_AggregateError(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	bookRepo := new(mocks.MockBookRepository)
	aggregator := NewRatingAggregator(reviewRepo, bookRepo)

	ctx := context.Background()
	bookID := primitive.NewObjectID()

	reviewRepo.On("AverageRating", ctx, bookID).Return(0.0, int64(0), errors.New("db error"))

	err := aggregator.Recompute(ctx, bookID)

	assert.Error(t, err)
	bookRepo.AssertNotCalled(t, "SetAverageRating")
}

func TestRecompute_WriteError(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	bookRepo := new(mocks.MockBookRepository)
	aggregator := NewRatingAggregator(reviewRepo, bookRepo)

	ctx := context.Background()
	bookID := primitive.NewObjectID()

	reviewRepo.On("AverageRating", ctx, bookID).Return(4.0, int64(2), nil)
	bookRepo.On("SetAverageRating", ctx, bookID, 4.0).Return(errors.New("db error"))

	err := aggregator.Recompute(ctx, bookID)

	assert.Error(t, err)
}

func TestRoundToTenth(t *testing.T) {
	cases := map[float64]float64{
		4.333333: 4.3,
		4.25:     4.3,
		4.24:     4.2,
		5.0:      5.0,
		1.05:     1.1,
	}

	for in, want := range cases {
		assert.Equal(t, want, roundToTenth(in), "roundToTenth(%v)", in)
	}
}
