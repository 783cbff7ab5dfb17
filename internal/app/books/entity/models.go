package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Genres - допустимые жанры книг
var Genres = []string{
	"Fiction",
	"Non-fiction",
	"Fantasy",
	"Science Fiction",
	"Mystery",
	"Thriller",
	"Romance",
	"Biography",
	"History",
	"Self-help",
	"Other",
}

// Book представляет книгу в каталоге
// AverageRating - производное поле, пересчитывается при изменении отзывов
type Book struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title           string             `json:"title" bson:"title"`
	Author          string             `json:"author" bson:"author"`
	Description     string             `json:"description" bson:"description"`
	Genre           string             `json:"genre" bson:"genre"`
	PublicationYear int                `json:"publicationYear,omitempty" bson:"publication_year,omitempty"`
	AverageRating   float64            `json:"averageRating" bson:"average_rating"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
	UserID          string             `json:"userId" bson:"user_id"` // Владелец книги из сервиса аутентификации
}

// Review представляет отзыв на книгу
// Пара (BookID, UserID) уникальна - один отзыв на книгу от пользователя
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Text      string             `json:"text" bson:"text"`
	Rating    int                `json:"rating" bson:"rating"` // Оценка от 1 до 5
	BookID    primitive.ObjectID `json:"bookId" bson:"book_id"`
	UserID    string             `json:"userId" bson:"user_id"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// GenreStat - агрегированная статистика по одному жанру
type GenreStat struct {
	Genre         string  `json:"genre" bson:"_id"`
	Count         int     `json:"count" bson:"count"`
	AverageRating float64 `json:"averageRating" bson:"average_rating"`
}

// ReviewEvent представляет событие изменения отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED, REVIEW_UPDATED, REVIEW_DELETED
	ReviewID  string    `json:"review_id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
