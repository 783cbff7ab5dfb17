package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/infrastructure"
	"bookreviews/internal/app/books/repository"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotReviewOwner  = errors.New("caller is not the review author")
	ErrDuplicateReview = errors.New("review already exists for this book and user")
)

// ReviewService координирует жизненный цикл отзыва: создание, обновление,
// удаление с проверкой авторства. После каждой подтверждённой мутации
// явно запускает пересчёт среднего рейтинга книги и публикует событие
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
	aggregator RatingRecomputer
	publisher  infrastructure.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	bookRepo repository.BookRepository,
	aggregator RatingRecomputer,
	publisher infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
		aggregator: aggregator,
		publisher:  publisher,
	}
}

// CreateReview создает отзыв пользователя на книгу
// Книга должна существовать, пара (книга, пользователь) уникальна:
// повторная попытка отклоняется и предварительной проверкой, и уникальным
// индексом хранилища - гонка "проверили-вставили" закрыта индексом
func (s *ReviewService) CreateReview(ctx context.Context, bookID string, userID string, req *entity.CreateReviewRequest) (*entity.Review, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsForBookAndUser(ctx, book.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	review := &entity.Review{
		Title:  req.Title,
		Text:   req.Text,
		Rating: req.Rating,
		BookID: book.ID,
		UserID: userID,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewMutations.WithLabelValues("create").Inc()

	s.recomputeRating(ctx, book.ID)
	s.publishReviewEvent(ctx, "REVIEW_CREATED", review)

	return review, nil
}

// UpdateReview обновляет отзыв с проверкой авторства
// Рейтинг мог измениться, поэтому среднее пересчитывается всегда
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID string, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if review.UserID != userID {
		return nil, ErrNotReviewOwner
	}

	// Обновляем только переданные поля
	if req.Title != "" {
		review.Title = req.Title
	}
	if req.Text != "" {
		review.Text = req.Text
	}
	if req.Rating > 0 {
		review.Rating = req.Rating
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	metrics.ReviewMutations.WithLabelValues("update").Inc()

	s.recomputeRating(ctx, review.BookID)
	s.publishReviewEvent(ctx, "REVIEW_UPDATED", review)

	return review, nil
}

// DeleteReview удаляет отзыв с проверкой авторства
// Пересчёт идёт по bookID удалённого отзыва; если отзыв был последним,
// средний рейтинг книги сбрасывается в 0
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID string, userID string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if review.UserID != userID {
		return ErrNotReviewOwner
	}

	if err := s.reviewRepo.Delete(ctx, review.ID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	metrics.ReviewMutations.WithLabelValues("delete").Inc()

	s.recomputeRating(ctx, review.BookID)
	s.publishReviewEvent(ctx, "REVIEW_DELETED", review)

	return nil
}

// GetUserReviews возвращает все отзывы пользователя, новые первыми
func (s *ReviewService) GetUserReviews(ctx context.Context, userID string) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reviews: %w", err)
	}

	if reviews == nil {
		reviews = []entity.Review{}
	}

	return reviews, nil
}

// recomputeRating запускает пересчёт среднего рейтинга книги
// Ошибка пересчёта логируется и не откатывает мутацию отзыва:
// производное поле сойдётся при следующем событии или фоновой сверке
func (s *ReviewService) recomputeRating(ctx context.Context, bookID primitive.ObjectID) {
	if err := s.aggregator.Recompute(ctx, bookID); err != nil {
		logger.Error().
			Err(err).
			Str("book_id", bookID.Hex()).
			Msg("Failed to recompute average rating")
	}
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Ошибки публикации не прерывают выполнение - мутация уже подтверждена
func (s *ReviewService) publishReviewEvent(ctx context.Context, eventType string, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType: eventType,
		ReviewID:  review.ID.Hex(),
		BookID:    review.BookID.Hex(),
		UserID:    review.UserID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal review event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, event.ReviewID, data); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Str("review_id", event.ReviewID).
			Msg("Failed to publish review event")
	}
}
