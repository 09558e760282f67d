package service

import (
	"context"

	"partshop/pkg/events"
	"partshop/pkg/logger"
	"partshop/shop-service/internal/app/shop/infrastructure"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// publishEvent отправляет событие в брокер. Ошибка отправки только логируется:
// изменение в БД к этому моменту уже зафиксировано.
func publishEvent(ctx context.Context, publisher infrastructure.MessagePublisher, event *events.ShopEvent) {
	if publisher == nil {
		return
	}

	payload, err := event.Marshal()
	if err != nil {
		logger.Error().Err(err).Str("event_type", string(event.EventType)).Msg("Failed to marshal shop event")
		return
	}

	if err := publisher.PublishMessage(ctx, event.Key(), payload); err != nil {
		logger.Warn().
			Err(err).
			Str("event_id", event.EventID).
			Str("event_type", string(event.EventType)).
			Uint("product_id", event.ProductID).
			Msg("Failed to publish shop event")
	}
}

// pagination приводит skip/limit к допустимым значениям
func pagination(skip int, limit *int) (int, int) {
	if skip < 0 {
		skip = 0
	}

	l := defaultPageLimit
	if limit != nil {
		l = *limit
	}
	if l < 1 {
		l = defaultPageLimit
	}
	if l > maxPageLimit {
		l = maxPageLimit
	}

	return skip, l
}
