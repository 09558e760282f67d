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

// ReconcileService пересчитывает рейтинги всех товаров и приводит корзины к остаткам
type ReconcileService struct {
	reconcileRepo repository.ReconcileRepository
}

func NewReconcileService(reconcileRepo repository.ReconcileRepository) *ReconcileService {
	return &ReconcileService{reconcileRepo: reconcileRepo}
}

func (s *ReconcileService) Reconcile(ctx context.Context) (*entity.ReconcileReport, error) {
	start := time.Now()
	report := &entity.ReconcileReport{}

	ids, err := s.reconcileRepo.ListProductIDs(ctx)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		corrected, _, err := s.reconcileRepo.RecalculateRating(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to reconcile product %d: %w", id, err)
		}

		report.ProductsChecked++
		if corrected {
			report.RatingsCorrected++
		}
	}

	clamped, removed, err := s.reconcileRepo.ClampCartItems(ctx)
	if err != nil {
		return nil, err
	}
	report.CartItemsClamped = clamped
	report.CartItemsRemoved = removed
	report.Duration = time.Since(start)

	metrics.WorkerRatingsCorrected.Add(float64(report.RatingsCorrected))
	metrics.WorkerCartItemsClamped.Add(float64(clamped + removed))
	metrics.WorkerReconcileDuration.Observe(report.Duration.Seconds())

	logger.Info().
		Int("products_checked", report.ProductsChecked).
		Int("ratings_corrected", report.RatingsCorrected).
		Int64("cart_items_clamped", clamped).
		Int64("cart_items_removed", removed).
		Dur("duration", report.Duration).
		Msg("Reconciliation finished")

	return report, nil
}
