package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"partshop/background-worker-service/internal/app/background-worker/entity"
	"partshop/background-worker-service/internal/app/background-worker/repository"
	"partshop/pkg/logger"
	"partshop/pkg/metrics"
)

// EventProcessingService архивирует события и поправляет рейтинг после событий отзывов
type EventProcessingService struct {
	reconcileRepo repository.ReconcileRepository
	archiveRepo   repository.EventArchiveRepository
}

func NewEventProcessingService(
	reconcileRepo repository.ReconcileRepository,
	archiveRepo repository.EventArchiveRepository,
) *EventProcessingService {
	return &EventProcessingService{
		reconcileRepo: reconcileRepo,
		archiveRepo:   archiveRepo,
	}
}

// ProcessEvent сначала сверяет рейтинг, потом пишет событие в архив:
// при ошибке сверки offset не коммитится и событие придет повторно
func (s *EventProcessingService) ProcessEvent(ctx context.Context, event *entity.ArchivedEvent) error {
	if event.EventType.IsReview() && event.ProductID != 0 {
		if err := s.reconcileRating(ctx, event); err != nil {
			return err
		}
	}

	if event.ArchivedAt.IsZero() {
		event.ArchivedAt = time.Now().UTC()
	}

	inserted, err := s.archiveRepo.Save(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to archive event %s: %w", event.EventID, err)
	}
	if !inserted {
		logger.Debug().
			Str("event_id", event.EventID).
			Str("event_type", string(event.EventType)).
			Msg("Event already archived, skipping")
	}

	return nil
}

func (s *EventProcessingService) reconcileRating(ctx context.Context, event *entity.ArchivedEvent) error {
	corrected, rating, err := s.reconcileRepo.RecalculateRating(ctx, event.ProductID)
	if err != nil {
		// товар удален вместе с отзывами, сверять нечего
		if errors.Is(err, repository.ErrProductNotFound) {
			logger.Debug().Uint("product_id", event.ProductID).Msg("Product is gone, rating check skipped")
			return nil
		}
		return fmt.Errorf("failed to recalculate rating for product %d: %w", event.ProductID, err)
	}

	if corrected {
		metrics.WorkerRatingsCorrected.Inc()
		logger.Warn().
			Uint("product_id", event.ProductID).
			Float64("event_rating", event.Rating).
			Float64("rating", rating).
			Msg("Product rating drift corrected")
	}

	return nil
}
