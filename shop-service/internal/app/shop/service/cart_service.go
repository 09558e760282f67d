package service

import (
	"context"
	"errors"
	"fmt"

	"partshop/pkg/events"
	"partshop/pkg/metrics"
	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/infrastructure"
	"partshop/shop-service/internal/app/shop/repository"
)

// CartService управляет корзиной пользователя.
// Остаток товара только проверяется и никогда не списывается.
type CartService struct {
	cartRepo  repository.CartRepository
	publisher infrastructure.MessagePublisher
}

func NewCartService(cartRepo repository.CartRepository, publisher infrastructure.MessagePublisher) *CartService {
	return &CartService{
		cartRepo:  cartRepo,
		publisher: publisher,
	}
}

// ListItems возвращает позиции корзины с товарами
func (s *CartService) ListItems(ctx context.Context, userID uint) ([]entity.CartItem, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	return items, nil
}

// AddItem добавляет товар в корзину. Если товар уже в корзине, количество суммируется.
func (s *CartService) AddItem(ctx context.Context, userID uint, req *entity.AddCartItemRequest) (*entity.CartItem, error) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.cartRepo.AddItem(ctx, userID, req.ProductID, quantity)
	if err != nil {
		return nil, s.mapError("add", err)
	}

	metrics.CartOperations.WithLabelValues("add", "success").Inc()
	s.publish(ctx, events.CartItemAdded, item)

	return item, nil
}

// UpdateItem устанавливает новое количество позиции
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uint, req *entity.UpdateCartItemRequest) (*entity.CartItem, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.cartRepo.UpdateQuantity(ctx, userID, itemID, req.Quantity)
	if err != nil {
		return nil, s.mapError("update", err)
	}

	metrics.CartOperations.WithLabelValues("update", "success").Inc()
	s.publish(ctx, events.CartItemUpdated, item)

	return item, nil
}

// RemoveItem удаляет позицию. Чужая позиция неотличима от несуществующей.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) error {
	item, err := s.cartRepo.Delete(ctx, userID, itemID)
	if err != nil {
		return s.mapError("remove", err)
	}

	metrics.CartOperations.WithLabelValues("remove", "success").Inc()
	s.publish(ctx, events.CartItemRemoved, item)

	return nil
}

func (s *CartService) mapError(operation string, err error) error {
	switch {
	case errors.Is(err, repository.ErrInsufficientStock):
		metrics.CartOperations.WithLabelValues(operation, "not_enough_stock").Inc()
		return ErrInsufficientStock
	case errors.Is(err, repository.ErrProductNotFound):
		metrics.CartOperations.WithLabelValues(operation, "not_found").Inc()
		return ErrProductNotFound
	case errors.Is(err, repository.ErrCartItemNotFound):
		metrics.CartOperations.WithLabelValues(operation, "not_found").Inc()
		return ErrCartItemNotFound
	}
	return fmt.Errorf("failed to %s cart item: %w", operation, err)
}

func (s *CartService) publish(ctx context.Context, eventType events.EventType, item *entity.CartItem) {
	event := events.New(eventType)
	event.ProductID = item.ProductID
	event.UserID = item.UserID
	event.Quantity = item.Quantity
	publishEvent(ctx, s.publisher, event)
}
