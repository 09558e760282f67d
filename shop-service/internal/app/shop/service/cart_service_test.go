package service

import (
	"context"
	"errors"
	"testing"

	"partshop/pkg/events"
	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/repository"
	"partshop/shop-service/internal/app/shop/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestCartService_AddItem_DefaultQuantity(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cartRepo := new(mocks.MockCartRepository)
	publisher := new(mocks.MockMessagePublisher)

	item := &entity.CartItem{ID: 1, UserID: 2, ProductID: 5, Quantity: 1}
	cartRepo.On("AddItem", ctx, uint(2), uint(5), 1).Return(item, nil)
	publisher.On("PublishMessage", ctx, "5", mock.MatchedBy(func(payload []byte) bool {
		event, err := events.Unmarshal(payload)
		return err == nil && event.EventType == events.CartItemAdded && event.Quantity == 1
	})).Return(nil)

	service := NewCartService(cartRepo, publisher)

	// Act
	result, err := service.AddItem(ctx, 2, &entity.AddCartItemRequest{ProductID: 5})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Quantity)
	cartRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCartService_AddItem_InvalidQuantity(t *testing.T) {
	cartRepo := new(mocks.MockCartRepository)
	service := NewCartService(cartRepo, nil)

	for _, q := range []int{0, -3} {
		_, err := service.AddItem(context.Background(), 1, &entity.AddCartItemRequest{ProductID: 5, Quantity: intPtr(q)})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	cartRepo.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_AddItem_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		want    error
	}{
		{"not enough stock", repository.ErrInsufficientStock, ErrInsufficientStock},
		{"product not found", repository.ErrProductNotFound, ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cartRepo := new(mocks.MockCartRepository)
			cartRepo.On("AddItem", ctx, uint(1), uint(5), 3).Return(nil, tt.repoErr)

			_, err := NewCartService(cartRepo, nil).AddItem(ctx, 1, &entity.AddCartItemRequest{ProductID: 5, Quantity: intPtr(3)})

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCartService_AddItem_UnexpectedError(t *testing.T) {
	ctx := context.Background()
	cartRepo := new(mocks.MockCartRepository)
	cartRepo.On("AddItem", ctx, uint(1), uint(5), 1).Return(nil, errors.New("connection reset"))

	_, err := NewCartService(cartRepo, nil).AddItem(ctx, 1, &entity.AddCartItemRequest{ProductID: 5})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add cart item")
}

func TestCartService_UpdateItem(t *testing.T) {
	ctx := context.Background()
	cartRepo := new(mocks.MockCartRepository)
	cartRepo.On("UpdateQuantity", ctx, uint(1), uint(10), 5).
		Return(&entity.CartItem{ID: 10, UserID: 1, ProductID: 5, Quantity: 5}, nil)
	cartRepo.On("UpdateQuantity", ctx, uint(1), uint(10), 6).Return(nil, repository.ErrInsufficientStock)
	cartRepo.On("UpdateQuantity", ctx, uint(1), uint(11), 1).Return(nil, repository.ErrCartItemNotFound)

	service := NewCartService(cartRepo, nil)

	item, err := service.UpdateItem(ctx, 1, 10, &entity.UpdateCartItemRequest{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	_, err = service.UpdateItem(ctx, 1, 10, &entity.UpdateCartItemRequest{Quantity: 6})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = service.UpdateItem(ctx, 1, 11, &entity.UpdateCartItemRequest{Quantity: 1})
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	_, err = service.UpdateItem(ctx, 1, 10, &entity.UpdateCartItemRequest{Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	cartRepo := new(mocks.MockCartRepository)
	publisher := new(mocks.MockMessagePublisher)

	cartRepo.On("Delete", ctx, uint(1), uint(10)).Return(&entity.CartItem{ID: 10, UserID: 1, ProductID: 5, Quantity: 2}, nil)
	cartRepo.On("Delete", ctx, uint(2), uint(10)).Return(nil, repository.ErrCartItemNotFound)
	publisher.On("PublishMessage", ctx, "5", mock.Anything).Return(nil)

	service := NewCartService(cartRepo, publisher)

	require.NoError(t, service.RemoveItem(ctx, 1, 10))
	// Чужая позиция выглядит как отсутствующая
	assert.ErrorIs(t, service.RemoveItem(ctx, 2, 10), ErrCartItemNotFound)
	publisher.AssertNumberOfCalls(t, "PublishMessage", 1)
}
