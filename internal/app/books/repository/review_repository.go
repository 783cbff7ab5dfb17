package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов
// Уникальный составной индекс (book_id, user_id) закрывает гонку
// "проверили-вставили": второй отзыв того же пользователя на ту же книгу
// отклоняется самим хранилищем
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "book_id", Value: 1},
				{Key: "user_id", Value: 1},
			},
			Options: options.Index().SetName("book_user_unique_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "book_id", Value: 1}},
			Options: options.Index().SetName("book_id_idx"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_id_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Индексы могут уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("Failed to create review indexes")
	}

	return &reviewRepository{collection: collection}
}

// Create сохраняет новый отзыв
// Нарушение уникального индекса транслируется в ErrDuplicateReview
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "reviews")
	defer timer.ObserveDuration()

	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReview
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

// GetByID получает отзыв по ID
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	var review entity.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

// FindByBook возвращает страницу отзывов на книгу, новые первыми
func (r *reviewRepository) FindByBook(ctx context.Context, bookID primitive.ObjectID, skip, limit int) ([]entity.Review, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "reviews")
	defer timer.ObserveDuration()

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"book_id": bookID}, findOpts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// CountByBook считает все отзывы на книгу без учёта пагинации
func (r *reviewRepository) CountByBook(ctx context.Context, bookID primitive.ObjectID) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{"book_id": bookID})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpCount)
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	return total, nil
}

// FindByUser возвращает все отзывы пользователя, новые первыми
// Использует индекс user_id_idx
func (r *reviewRepository) FindByUser(ctx context.Context, userID string) ([]entity.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find user reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// ExistsForBookAndUser проверяет, оставлял ли пользователь отзыв на книгу
// Предварительная проверка для понятного сообщения об ошибке;
// гарантию даёт уникальный индекс
func (r *reviewRepository) ExistsForBookAndUser(ctx context.Context, bookID primitive.ObjectID, userID string) (bool, error) {
	err := r.collection.FindOne(ctx,
		bson.M{"book_id": bookID, "user_id": userID},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}}),
	).Err()

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}

	return true, nil
}

// Update обновляет изменяемые поля отзыва
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "reviews")
	defer timer.ObserveDuration()

	review.UpdatedAt = time.Now()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": review.ID},
		bson.M{"$set": bson.M{
			"title":      review.Title,
			"text":       review.Text,
			"rating":     review.Rating,
			"updated_at": review.UpdatedAt,
		}},
	)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to update review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Delete удаляет отзыв
func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpDelete, "reviews")
	defer timer.ObserveDuration()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpDelete)
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// AverageRating считает средний рейтинг книги по текущему набору отзывов
// Агрегация выполняется хранилищем над актуальными данными, а не снимком
// в памяти, поэтому параллельные пересчёты сходятся к корректному значению
func (r *reviewRepository) AverageRating(ctx context.Context, bookID primitive.ObjectID) (float64, int64, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpAggregate, "reviews")
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"book_id": bookID}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$book_id",
			"average_rating": bson.M{"$avg": "$rating"},
			"count":          bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpAggregate)
		return 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		AverageRating float64 `bson:"average_rating"`
		Count         int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, fmt.Errorf("failed to decode rating aggregate: %w", err)
	}

	if len(results) == 0 {
		return 0, 0, nil
	}

	return results[0].AverageRating, results[0].Count, nil
}
