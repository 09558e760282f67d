package repository

import (
	"context"
	"errors"
	"fmt"

	"partshop/shop-service/internal/app/shop/entity"

	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// withDetails подгружает категорию и отзывы (с авторами, новые сверху)
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviews.created_at DESC")
		}).
		Preload("Reviews.User")
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	err := r.db.WithContext(ctx).Omit("Category", "Reviews").Create(product).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*entity.Product, error) {
	var product entity.Product
	err := withDetails(r.db.WithContext(ctx)).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	var product entity.Product
	if err := r.db.WithContext(ctx).First(&product, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by name: %w", err)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	query := withDetails(r.db.WithContext(ctx)).Model(&entity.Product{})

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var products []entity.Product
	err := query.
		Order("id").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Update перезаписывает редактируемые поля товара (rating и reviews_count не трогаются).
// Позиции корзины, превышающие новый остаток, уменьшаются до остатка,
// а при нулевом остатке удаляются, чтобы quantity <= stock выполнялось всегда.
func (r *productRepository) Update(ctx context.Context, product *entity.Product) (int64, error) {
	var affectedCartItems int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]interface{}{
				"name":        product.Name,
				"description": product.Description,
				"price":       product.Price,
				"stock":       product.Stock,
				"category_id": product.CategoryID,
				"image_url":   product.ImageURL,
			})
		if result.Error != nil {
			if isForeignKeyViolation(result.Error) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to update product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		var cart *gorm.DB
		if product.Stock == 0 {
			cart = tx.Where("product_id = ?", product.ID).Delete(&entity.CartItem{})
		} else {
			cart = tx.Model(&entity.CartItem{}).
				Where("product_id = ? AND quantity > ?", product.ID, product.Stock).
				Update("quantity", product.Stock)
		}
		if cart.Error != nil {
			return fmt.Errorf("failed to adjust cart items to stock: %w", cart.Error)
		}
		affectedCartItems = cart.RowsAffected

		return nil
	})
	if err != nil {
		return 0, err
	}

	return affectedCartItems, nil
}

// Delete удаляет товар; отзывы и позиции корзин удаляются каскадно
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
