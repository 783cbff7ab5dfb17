package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/query"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const serviceName = "book-review-api"

type bookRepository struct {
	collection *mongo.Collection
}

// NewBookRepository создает новый репозиторий книг
// Автоматически создает индексы по genre и created_at для листинга
func NewBookRepository(db *mongo.Database) BookRepository {
	collection := db.Collection("books")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "genre", Value: 1}},
			Options: options.Index().SetName("genre_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Индексы могут уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("Failed to create book indexes")
	}

	return &bookRepository{collection: collection}
}

// Create сохраняет новую книгу в MongoDB
func (r *bookRepository) Create(ctx context.Context, book *entity.Book) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "books")
	defer timer.ObserveDuration()

	book.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, book)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create book: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		book.ID = oid
	}

	return nil
}

// GetByID получает книгу по ID
// Невалидный идентификатор отличается от отсутствующей книги отдельной ошибкой
func (r *bookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	var book entity.Book
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return &book, nil
}

// List выполняет постраничную выборку книг по структурированному фильтру
func (r *bookRepository) List(ctx context.Context, filter query.Filter, opts ListOptions) ([]entity.Book, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "books")
	defer timer.ObserveDuration()

	findOpts := options.Find().
		SetSort(opts.Sort).
		SetSkip(int64(opts.Skip)).
		SetLimit(int64(opts.Limit))

	if opts.Projection != nil {
		findOpts.SetProjection(opts.Projection)
	}

	cursor, err := r.collection.Find(ctx, filter.BSON(), findOpts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find books: %w", err)
	}
	defer cursor.Close(ctx)

	var books []entity.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	return books, nil
}

// Count считает книги, подходящие под фильтр, без учёта окна пагинации
func (r *bookRepository) Count(ctx context.Context, filter query.Filter) (int64, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpCount, "books")
	defer timer.ObserveDuration()

	total, err := r.collection.CountDocuments(ctx, filter.BSON())
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpCount)
		return 0, fmt.Errorf("failed to count books: %w", err)
	}

	return total, nil
}

// searchFilter - подстрочное совпадение по title ИЛИ author без учёта регистра
// Спецсимволы пользовательского запроса экранируются
func searchFilter(text string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
	return bson.M{
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"author": pattern},
		},
	}
}

// Search выполняет текстовый поиск книг по названию или автору
// Результат отсортирован новыми записями вперёд
func (r *bookRepository) Search(ctx context.Context, text string, skip, limit int) ([]entity.Book, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "books")
	defer timer.ObserveDuration()

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, searchFilter(text), findOpts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	defer cursor.Close(ctx)

	var books []entity.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	return books, nil
}

// SearchCount считает общее количество совпадений текстового поиска
func (r *bookRepository) SearchCount(ctx context.Context, text string) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, searchFilter(text))
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpCount)
		return 0, fmt.Errorf("failed to count search results: %w", err)
	}

	return total, nil
}

// SetAverageRating записывает пересчитанный средний рейтинг книги
func (r *bookRepository) SetAverageRating(ctx context.Context, id primitive.ObjectID, rating float64) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "books")
	defer timer.ObserveDuration()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"average_rating": rating}},
	)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to update average rating: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrBookNotFound
	}

	return nil
}

// GenreStats агрегирует количество книг и средний рейтинг по каждому жанру
func (r *bookRepository) GenreStats(ctx context.Context) ([]entity.GenreStat, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpAggregate, "books")
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":            "$genre",
			"count":          bson.M{"$sum": 1},
			"average_rating": bson.M{"$avg": "$average_rating"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpAggregate)
		return nil, fmt.Errorf("failed to aggregate genre stats: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []entity.GenreStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode genre stats: %w", err)
	}

	return stats, nil
}

// AllIDs возвращает идентификаторы всех книг для фоновой сверки рейтингов
func (r *bookRepository) AllIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to list book ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode book ids: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}

	return ids, nil
}
