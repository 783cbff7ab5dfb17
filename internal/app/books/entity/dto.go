package entity

import "bookreviews/internal/app/books/query"

// CreateBookRequest - запрос на добавление книги в каталог
type CreateBookRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Author          string `json:"author" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Genre           string `json:"genre" validate:"required,oneof='Fiction' 'Non-fiction' 'Fantasy' 'Science Fiction' 'Mystery' 'Thriller' 'Romance' 'Biography' 'History' 'Self-help' 'Other'"`
	PublicationYear int    `json:"publicationYear" validate:"omitempty,gte=0"`
}

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	Title  string `json:"title" validate:"required,max=100"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

// UpdateReviewRequest - запрос на обновление отзыва
// Передаются только изменяемые поля
type UpdateReviewRequest struct {
	Title  string `json:"title" validate:"omitempty,max=100"`
	Text   string `json:"text" validate:"omitempty"`
	Rating int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DataResponse - ответ с одним объектом
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ListResponse - ответ со страницей списка
// Count - количество элементов на этой странице, общее количество
// выводится через дескрипторы пагинации
type ListResponse struct {
	Success    bool           `json:"success"`
	Count      int            `json:"count"`
	Pagination query.PageInfo `json:"pagination"`
	Data       interface{}    `json:"data"`
}

// BookDetailResponse - книга с постраничным списком её отзывов
type BookDetailResponse struct {
	Success     bool           `json:"success"`
	Data        *Book          `json:"data"`
	Reviews     []Review       `json:"reviews"`
	ReviewCount int64          `json:"reviewCount"`
	Pagination  query.PageInfo `json:"pagination"`
}
