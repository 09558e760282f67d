package repository

import (
	"context"
	"errors"

	"partshop/background-worker-service/internal/app/background-worker/entity"
)

var ErrProductNotFound = errors.New("product not found")

// ReconcileRepository сверяет производные данные shop-service с исходными таблицами PostgreSQL
type ReconcileRepository interface {
	// ListProductIDs возвращает ID всех товаров по возрастанию
	ListProductIDs(ctx context.Context) ([]uint, error)

	// RecalculateRating пересчитывает рейтинг товара по отзывам.
	// corrected = true, если сохраненное значение расходилось с пересчитанным.
	RecalculateRating(ctx context.Context, productID uint) (corrected bool, rating float64, err error)

	// ClampCartItems приводит количество в корзинах к остатку на складе
	ClampCartItems(ctx context.Context) (clamped int64, removed int64, err error)
}

// EventArchiveRepository хранит события магазина в MongoDB
type EventArchiveRepository interface {
	EnsureIndexes(ctx context.Context) error

	// Save сохраняет событие; false, если событие с таким event_id уже в архиве
	Save(ctx context.Context, event *entity.ArchivedEvent) (bool, error)

	Ping(ctx context.Context) error
}
