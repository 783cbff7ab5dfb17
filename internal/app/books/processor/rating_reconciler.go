package processor

import (
	"context"

	"bookreviews/internal/app/books/repository"
	"bookreviews/internal/app/books/service"
	"bookreviews/pkg/logger"

	"github.com/robfig/cron/v3"
)

// RatingReconciler периодически пересчитывает средние рейтинги всех книг
// Страховка сходимости: неудачная запись среднего при мутации отзыва
// логируется и глотается, фоновая сверка доводит значение до корректного
type RatingReconciler struct {
	cron       *cron.Cron
	bookRepo   repository.BookRepository
	aggregator service.RatingRecomputer
}

// NewRatingReconciler создает новый планировщик сверки рейтингов
func NewRatingReconciler(
	bookRepo repository.BookRepository,
	aggregator service.RatingRecomputer,
) *RatingReconciler {
	return &RatingReconciler{
		cron:       cron.New(),
		bookRepo:   bookRepo,
		aggregator: aggregator,
	}
}

// Start регистрирует задачу по cron-расписанию и запускает планировщик
func (r *RatingReconciler) Start(ctx context.Context, schedule string) error {
	_, err := r.cron.AddFunc(schedule, func() {
		r.ReconcileAll(ctx)
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("Rating reconciler started")

	return nil
}

// ReconcileAll пересчитывает средний рейтинг каждой книги каталога
// Ошибка по одной книге не прерывает обход остальных
func (r *RatingReconciler) ReconcileAll(ctx context.Context) {
	ids, err := r.bookRepo.AllIDs(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Rating reconciliation failed to list books")
		return
	}

	failed := 0
	for _, id := range ids {
		if err := r.aggregator.Recompute(ctx, id); err != nil {
			failed++
			logger.Warn().
				Err(err).
				Str("book_id", id.Hex()).
				Msg("Failed to reconcile book rating")
		}
	}

	logger.Info().
		Int("books", len(ids)).
		Int("failed", failed).
		Msg("Rating reconciliation completed")
}

// Stop останавливает планировщик и дожидается завершения текущей задачи
func (r *RatingReconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Rating reconciler stopped")
}
