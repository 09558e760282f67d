package service

import (
	"context"
	"errors"
	"testing"

	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/repository"
	"partshop/shop-service/internal/app/shop/repository/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogDeps struct {
	categoryRepo *mocks.MockCategoryRepository
	productRepo  *mocks.MockProductRepository
	cache        *mocks.MockCategoryCache
	publisher    *mocks.MockMessagePublisher
	service      *CatalogService
}

func newCatalogDeps() *catalogDeps {
	d := &catalogDeps{
		categoryRepo: new(mocks.MockCategoryRepository),
		productRepo:  new(mocks.MockProductRepository),
		cache:        new(mocks.MockCategoryCache),
		publisher:    new(mocks.MockMessagePublisher),
	}
	d.service = NewCatalogService(d.categoryRepo, d.productRepo, d.cache, d.publisher)
	return d
}

func testCategories() []entity.Category {
	return []entity.Category{
		{ID: 1, Name: "Процессоры"},
		{ID: 2, Name: "Видеокарты"},
		{ID: 3, Name: "Накопители"},
	}
}

func newProductRequest() *entity.ProductRequest {
	return &entity.ProductRequest{
		Name:       "AMD Ryzen 9 5950X",
		Price:      decimal.RequireFromString("45000.499"),
		Stock:      8,
		CategoryID: 1,
	}
}

// ==================== Categories ====================

func TestCatalogService_ListCategories_CacheHit(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.cache.On("Get", ctx).Return(testCategories(), true, nil)

	limit := 2
	categories, err := d.service.ListCategories(ctx, 1, &limit)

	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, uint(2), categories[0].ID)
	d.categoryRepo.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestCatalogService_ListCategories_CacheMissLoadsAndStores(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.cache.On("Get", ctx).Return(nil, false, nil)
	d.categoryRepo.On("GetAll", ctx).Return(testCategories(), nil)
	d.cache.On("Set", ctx, testCategories()).Return(nil)

	categories, err := d.service.ListCategories(ctx, 0, nil)

	require.NoError(t, err)
	assert.Len(t, categories, 3)
	d.cache.AssertExpectations(t)
}

func TestCatalogService_ListCategories_CacheErrorFallsBackToDB(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.cache.On("Get", ctx).Return(nil, false, errors.New("redis down"))
	d.categoryRepo.On("GetAll", ctx).Return(testCategories(), nil)
	d.cache.On("Set", ctx, mock.Anything).Return(errors.New("redis down"))

	categories, err := d.service.ListCategories(ctx, 10, nil)

	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestCatalogService_UpdateCategory_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("Update", ctx, mock.AnythingOfType("*entity.Category")).Return(repository.ErrCategoryNotFound)

	_, err := d.service.UpdateCategory(ctx, 99, &entity.CategoryRequest{Name: "GPUs"})

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	d.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestCatalogService_CreateCategory_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("Create", ctx, mock.AnythingOfType("*entity.Category")).Return(nil)
	d.cache.On("Invalidate", ctx).Return(nil)

	category, err := d.service.CreateCategory(ctx, &entity.CategoryRequest{Name: "Блоки питания"})

	require.NoError(t, err)
	assert.Equal(t, "Блоки питания", category.Name)
	d.cache.AssertExpectations(t)
}

func TestCatalogService_DeleteCategory_InUse(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("Delete", ctx, uint(1)).Return(repository.ErrCategoryInUse)

	err := d.service.DeleteCategory(ctx, 1)

	assert.ErrorIs(t, err, ErrCategoryInUse)
}

// ==================== Products ====================

func TestCatalogService_ListProducts_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	categoryID := uint(2)
	limit := 5000
	d.productRepo.On("List", ctx, entity.ProductFilter{Offset: 20, Limit: 1000, CategoryID: &categoryID}).
		Return([]entity.Product{}, nil)

	_, err := d.service.ListProducts(ctx, &entity.ListQuery{Skip: 20, Limit: &limit, CategoryID: &categoryID})

	require.NoError(t, err)
	d.productRepo.AssertExpectations(t)
}

func TestCatalogService_CreateProduct_Success(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("GetByID", ctx, uint(1)).Return(&entity.Category{ID: 1}, nil)
	d.productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Product).ID = 11 }).
		Return(nil)
	d.publisher.On("PublishMessage", ctx, "11", mock.Anything).Return(nil)
	d.productRepo.On("GetByID", ctx, uint(11)).Return(&entity.Product{ID: 11, Name: "AMD Ryzen 9 5950X"}, nil)

	product, err := d.service.CreateProduct(ctx, newProductRequest())

	require.NoError(t, err)
	assert.Equal(t, uint(11), product.ID)

	created := d.productRepo.Calls[0].Arguments.Get(1).(*entity.Product)
	assert.Equal(t, "45000.5", created.Price.String())
	assert.Zero(t, created.Rating)
	d.publisher.AssertExpectations(t)
}

func TestCatalogService_CreateProduct_NegativePrice(t *testing.T) {
	d := newCatalogDeps()
	req := newProductRequest()
	req.Price = decimal.NewFromInt(-1)

	_, err := d.service.CreateProduct(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidPrice)
	d.productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogService_CreateProduct_CategoryNotFound(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("GetByID", ctx, uint(1)).Return(nil, repository.ErrCategoryNotFound)

	_, err := d.service.CreateProduct(ctx, newProductRequest())

	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCatalogService_UpdateProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("GetByID", ctx, uint(1)).Return(&entity.Category{ID: 1}, nil)
	d.productRepo.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(int64(0), repository.ErrProductNotFound)

	_, err := d.service.UpdateProduct(ctx, 404, newProductRequest())

	assert.ErrorIs(t, err, ErrProductNotFound)
	d.publisher.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_UpdateProduct_FullOverwrite(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.categoryRepo.On("GetByID", ctx, uint(1)).Return(&entity.Category{ID: 1}, nil)
	d.productRepo.On("Update", ctx, mock.MatchedBy(func(p *entity.Product) bool {
		return p.ID == 7 && p.Stock == 8 && p.ImageURL == nil
	})).Return(int64(2), nil)
	d.publisher.On("PublishMessage", ctx, "7", mock.Anything).Return(nil)
	d.productRepo.On("GetByID", ctx, uint(7)).Return(&entity.Product{ID: 7, Stock: 8, Rating: 4.5}, nil)

	product, err := d.service.UpdateProduct(ctx, 7, newProductRequest())

	require.NoError(t, err)
	assert.Equal(t, 4.5, product.Rating)
	d.productRepo.AssertExpectations(t)
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	d := newCatalogDeps()

	d.productRepo.On("Delete", ctx, uint(3)).Return(nil)
	d.publisher.On("PublishMessage", ctx, "3", mock.Anything).Return(nil)

	require.NoError(t, d.service.DeleteProduct(ctx, 3))
	d.publisher.AssertExpectations(t)
}
