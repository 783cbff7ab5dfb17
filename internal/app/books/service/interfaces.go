package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingRecomputer запускает пересчёт среднего рейтинга книги
// Отдельный интерфейс делает зависимость координатора отзывов от
// агрегатора явной и подменяемой в тестах
type RatingRecomputer interface {
	Recompute(ctx context.Context, bookID primitive.ObjectID) error
}
