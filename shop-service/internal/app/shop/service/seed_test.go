package service

import (
	"context"
	"testing"

	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/repository"
	"partshop/shop-service/internal/app/shop/repository/mocks"
	"partshop/shop-service/internal/app/shop/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSeeder_Seed_EmptyDatabase(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)

	userRepo.On("GetByEmail", ctx, mock.Anything).Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)

	nextID := uint(0)
	categoryRepo.On("GetByName", ctx, mock.Anything).Return(nil, repository.ErrCategoryNotFound)
	categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).
		Run(func(args mock.Arguments) {
			nextID++
			args.Get(1).(*entity.Category).ID = nextID
		}).
		Return(nil)

	productRepo.On("GetByName", ctx, mock.Anything).Return(nil, repository.ErrProductNotFound)
	productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)

	// Act
	err := NewSeeder(userRepo, categoryRepo, productRepo).Seed(ctx)

	// Assert
	require.NoError(t, err)
	userRepo.AssertNumberOfCalls(t, "Create", 2)
	categoryRepo.AssertNumberOfCalls(t, "Create", 5)
	productRepo.AssertNumberOfCalls(t, "Create", 7)

	admin := userRepo.Calls[1].Arguments.Get(1).(*entity.User)
	assert.Equal(t, "admin@admin.com", admin.Email)
	assert.True(t, admin.IsAdmin)
	assert.True(t, util.CheckPassword("admin", admin.HashedPassword))

	// RTX 3080 попадает во вторую созданную категорию
	for _, call := range productRepo.Calls {
		if call.Method != "Create" {
			continue
		}
		p := call.Arguments.Get(1).(*entity.Product)
		if p.Name == "NVIDIA GeForce RTX 3080" {
			assert.Equal(t, uint(2), p.CategoryID)
			assert.Equal(t, 5, p.Stock)
			assert.Equal(t, "80000", p.Price.String())
		}
	}
}

func TestSeeder_Seed_Idempotent(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)

	userRepo.On("GetByEmail", ctx, mock.Anything).Return(&entity.User{ID: 1}, nil)
	categoryRepo.On("GetByName", ctx, mock.Anything).Return(&entity.Category{ID: 1}, nil)
	productRepo.On("GetByName", ctx, mock.Anything).Return(&entity.Product{ID: 1}, nil)

	require.NoError(t, NewSeeder(userRepo, categoryRepo, productRepo).Seed(ctx))

	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	categoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
