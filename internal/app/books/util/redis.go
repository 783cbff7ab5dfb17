package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName        = "book-review-api"
	genreStatsCacheKey = "genres:stats"
)

// RedisClient кеширует статистику по жанрам
// Кеш инвалидируется при создании книги и истекает по TTL
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// GetGenreStats читает статистику из кеша
// Возвращает nil без ошибки при промахе кеша
func (r *RedisClient) GetGenreStats(ctx context.Context) ([]entity.GenreStat, error) {
	data, err := r.client.Get(ctx, genreStatsCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, "genres")
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, "get")
		return nil, fmt.Errorf("failed to get genre stats from cache: %w", err)
	}

	var stats []entity.GenreStat
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genre stats: %w", err)
	}

	metrics.RecordCacheHit(serviceName, "genres")
	return stats, nil
}

// SetGenreStats сохраняет статистику в кеш с TTL
func (r *RedisClient) SetGenreStats(ctx context.Context, stats []entity.GenreStat, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal genre stats: %w", err)
	}

	if err := r.client.Set(ctx, genreStatsCacheKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "set")
		return fmt.Errorf("failed to set genre stats in cache: %w", err)
	}

	return nil
}

// DeleteGenreStats инвалидирует кеш после изменения каталога
func (r *RedisClient) DeleteGenreStats(ctx context.Context) error {
	if err := r.client.Del(ctx, genreStatsCacheKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "del")
		return fmt.Errorf("failed to delete genre stats from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
