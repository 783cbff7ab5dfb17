package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"bookreviews/internal/app/books/entity"
	"bookreviews/internal/app/books/query"
	"bookreviews/internal/app/books/repository"
	"bookreviews/internal/app/books/util"
	"bookreviews/pkg/logger"
	"bookreviews/pkg/metrics"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrBookNotFound        = errors.New("book not found")
	ErrInvalidQuery        = errors.New("invalid query parameters")
	ErrSearchQueryRequired = errors.New("search query is required")
)

const genreStatsTTL = 5 * time.Minute

// BookPage - страница списка книг с дескрипторами пагинации
type BookPage struct {
	Books      []entity.Book
	Pagination query.PageInfo
}

// BookDetail - книга со страницей её отзывов
type BookDetail struct {
	Book        *entity.Book
	Reviews     []entity.Review
	ReviewCount int64
	Pagination  query.PageInfo
}

// BookService обрабатывает каталожные запросы: создание книг, листинг
// с фильтрами, текстовый поиск и карточку книги с отзывами
type BookService struct {
	bookRepo   repository.BookRepository
	reviewRepo repository.ReviewRepository
	genreCache util.GenreCache
}

// NewBookService создает новый сервис каталога с внедрением зависимостей
func NewBookService(
	bookRepo repository.BookRepository,
	reviewRepo repository.ReviewRepository,
	genreCache util.GenreCache,
) *BookService {
	return &BookService{
		bookRepo:   bookRepo,
		reviewRepo: reviewRepo,
		genreCache: genreCache,
	}
}

// CreateBook добавляет книгу в каталог от имени пользователя
func (s *BookService) CreateBook(ctx context.Context, userID string, req *entity.CreateBookRequest) (*entity.Book, error) {
	book := &entity.Book{
		Title:           req.Title,
		Author:          req.Author,
		Description:     req.Description,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		AverageRating:   0,
		UserID:          userID,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	metrics.BooksCreated.Inc()

	// Инвалидируем кеш статистики жанров
	// Книга уже создана, проблемы с кешем не критичны
	if err := s.genreCache.DeleteGenreStats(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate genre stats cache")
	}

	return book, nil
}

// ListBooks выполняет листинг каталога по произвольным фильтрам
// Параметры запроса транслируются в фильтр с белым списком операторов,
// count считается по тому же фильтру до применения окна пагинации
func (s *BookService) ListBooks(ctx context.Context, params url.Values) (*BookPage, error) {
	filter, err := query.ParseFilter(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	sort := query.ParseSort(params.Get("sort"))
	projection := query.ParseSelect(params.Get("select"))
	pagination := query.NewPagination(params.Get("page"), params.Get("limit"))

	total, err := s.bookRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	books, err := s.bookRepo.List(ctx, filter, repository.ListOptions{
		Sort:       sort,
		Projection: projection,
		Skip:       pagination.Skip,
		Limit:      pagination.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	if books == nil {
		books = []entity.Book{}
	}

	return &BookPage{
		Books:      books,
		Pagination: pagination.PageInfo(total),
	}, nil
}

// SearchBooks выполняет текстовый поиск по названию или автору
// Пустой запрос - ошибка клиента, хранилище при этом не трогаем
func (s *BookService) SearchBooks(ctx context.Context, text string, pagination query.Pagination) (*BookPage, error) {
	if text == "" {
		return nil, ErrSearchQueryRequired
	}

	metrics.SearchQueries.Inc()

	total, err := s.bookRepo.SearchCount(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	books, err := s.bookRepo.Search(ctx, text, pagination.Skip, pagination.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	if books == nil {
		books = []entity.Book{}
	}

	return &BookPage{
		Books:      books,
		Pagination: pagination.PageInfo(total),
	}, nil
}

// GetBook возвращает книгу со страницей её отзывов (новые первыми)
// ReviewCount - общее количество отзывов, пагинация считается от него
func (s *BookService) GetBook(ctx context.Context, bookID string, pagination query.Pagination) (*BookDetail, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	reviews, err := s.reviewRepo.FindByBook(ctx, book.ID, pagination.Skip, pagination.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get book reviews: %w", err)
	}

	reviewCount, err := s.reviewRepo.CountByBook(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count book reviews: %w", err)
	}

	if reviews == nil {
		reviews = []entity.Review{}
	}

	return &BookDetail{
		Book:        book,
		Reviews:     reviews,
		ReviewCount: reviewCount,
		Pagination:  pagination.PageInfo(reviewCount),
	}, nil
}

// GenreStats возвращает статистику по жанрам через сквозной кеш
// Промах кеша приводит к агрегации в хранилище и записи результата с TTL
func (s *BookService) GenreStats(ctx context.Context) ([]entity.GenreStat, error) {
	cached, err := s.genreCache.GetGenreStats(ctx)
	if err != nil {
		// Кеш недоступен - идём в хранилище
		logger.Warn().Err(err).Msg("Failed to read genre stats cache")
	}
	if cached != nil {
		return cached, nil
	}

	stats, err := s.bookRepo.GenreStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate genre stats: %w", err)
	}

	if stats == nil {
		stats = []entity.GenreStat{}
	}

	if err := s.genreCache.SetGenreStats(ctx, stats, genreStatsTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to write genre stats cache")
	}

	return stats, nil
}
