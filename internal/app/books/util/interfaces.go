package util

import (
	"context"
	"time"

	"bookreviews/internal/app/books/entity"
)

// GenreCache интерфейс кеша статистики по жанрам
// Используется для dependency injection и упрощения тестирования
type GenreCache interface {
	GetGenreStats(ctx context.Context) ([]entity.GenreStat, error)
	SetGenreStats(ctx context.Context, stats []entity.GenreStat, ttl time.Duration) error
	DeleteGenreStats(ctx context.Context) error
	Close() error
}
