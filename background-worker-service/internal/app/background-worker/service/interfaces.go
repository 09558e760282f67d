package service

import (
	"context"

	"partshop/background-worker-service/internal/app/background-worker/entity"
)

// EventProcessingServiceInterface обрабатывает одно событие магазина из Kafka
type EventProcessingServiceInterface interface {
	ProcessEvent(ctx context.Context, event *entity.ArchivedEvent) error
}

// ReconcileServiceInterface выполняет полную сверку рейтингов и корзин
type ReconcileServiceInterface interface {
	Reconcile(ctx context.Context) (*entity.ReconcileReport, error)
}
