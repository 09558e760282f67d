package service

import (
	"context"
	"errors"
	"fmt"

	"partshop/pkg/events"
	"partshop/pkg/logger"
	"partshop/pkg/metrics"
	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/infrastructure"
	"partshop/shop-service/internal/app/shop/repository"
)

// CatalogService обрабатывает бизнес-логику каталога.
// Координирует репозитории PostgreSQL, кеш категорий в Redis и публикацию событий о товарах.
type CatalogService struct {
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	categoryCache repository.CategoryCache
	publisher     infrastructure.MessagePublisher
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	categoryCache repository.CategoryCache,
	publisher infrastructure.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		categoryCache: categoryCache,
		publisher:     publisher,
	}
}

// === CATEGORIES ===

// ListCategories отдает страницу из полного списка категорий.
// Полный список берется из кеша, при промахе загружается из БД и кешируется.
func (s *CatalogService) ListCategories(ctx context.Context, skip int, limit *int) ([]entity.Category, error) {
	categories, err := s.allCategories(ctx)
	if err != nil {
		return nil, err
	}

	offset, l := pagination(skip, limit)
	if offset >= len(categories) {
		return []entity.Category{}, nil
	}
	end := offset + l
	if end > len(categories) {
		end = len(categories)
	}
	return categories[offset:end], nil
}

func (s *CatalogService) allCategories(ctx context.Context) ([]entity.Category, error) {
	categories, ok, err := s.categoryCache.Get(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read categories from cache")
	}
	if ok {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.categoryCache.Set(ctx, categories); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}

	return categories, nil
}

// GetCategory получает категорию по ID из PostgreSQL
func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error) {
	category := &entity.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategories(ctx)
	metrics.CatalogMutations.WithLabelValues("category", "create").Inc()

	return category, nil
}

// UpdateCategory полностью перезаписывает категорию
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req *entity.CategoryRequest) (*entity.Category, error) {
	category := &entity.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategories(ctx)
	metrics.CatalogMutations.WithLabelValues("category", "update").Inc()

	return s.GetCategory(ctx, id)
}

// DeleteCategory удаляет категорию без товаров
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrCategoryInUse):
			return ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCategories(ctx)
	metrics.CatalogMutations.WithLabelValues("category", "delete").Inc()

	return nil
}

func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if err := s.categoryCache.Invalidate(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}

// === PRODUCTS ===

func (s *CatalogService) ListProducts(ctx context.Context, query *entity.ListQuery) ([]entity.Product, error) {
	offset, limit := pagination(query.Skip, query.Limit)

	products, err := s.productRepo.List(ctx, entity.ProductFilter{
		Offset:     offset,
		Limit:      limit,
		CategoryID: query.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct возвращает товар с категорией и отзывами
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.ProductRequest) (*entity.Product, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	product := productFromRequest(req)
	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.CatalogMutations.WithLabelValues("product", "create").Inc()
	s.publishProductEvent(ctx, events.ProductCreated, product)

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct полностью перезаписывает товар. Рейтинг не меняется.
// Позиции корзин, превысившие новый остаток, уменьшаются в той же транзакции.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req *entity.ProductRequest) (*entity.Product, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	product := productFromRequest(req)
	product.ID = id

	adjusted, err := s.productRepo.Update(ctx, product)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if adjusted > 0 {
		logger.Info().
			Uint("product_id", id).
			Int("stock", product.Stock).
			Int64("cart_items", adjusted).
			Msg("Cart items adjusted to new stock")
	}

	metrics.CatalogMutations.WithLabelValues("product", "update").Inc()
	s.publishProductEvent(ctx, events.ProductUpdated, product)

	return s.GetProduct(ctx, id)
}

// DeleteProduct удаляет товар вместе с его отзывами и позициями корзин
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	metrics.CatalogMutations.WithLabelValues("product", "delete").Inc()
	s.publishProductEvent(ctx, events.ProductDeleted, &entity.Product{ID: id})

	return nil
}

// validateProduct проверяет цену и существование категории
func (s *CatalogService) validateProduct(ctx context.Context, req *entity.ProductRequest) error {
	if req.Price.IsNegative() {
		return ErrInvalidPrice
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to verify category: %w", err)
	}
	return nil
}

func (s *CatalogService) publishProductEvent(ctx context.Context, eventType events.EventType, product *entity.Product) {
	event := events.New(eventType)
	event.ProductID = product.ID
	event.Quantity = product.Stock
	publishEvent(ctx, s.publisher, event)
}

func productFromRequest(req *entity.ProductRequest) *entity.Product {
	return &entity.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	}
}
