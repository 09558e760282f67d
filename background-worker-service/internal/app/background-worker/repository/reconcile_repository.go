package repository

import (
	"context"
	"errors"
	"fmt"

	"partshop/background-worker-service/internal/app/background-worker/entity"
	"partshop/pkg/rating"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	removeOutOfStockSQL = `DELETE FROM cart_items WHERE product_id IN (SELECT id FROM products WHERE stock = 0)`

	clampToStockSQL = `UPDATE cart_items SET quantity = products.stock, updated_at = NOW() ` +
		`FROM products WHERE cart_items.product_id = products.id AND cart_items.quantity > products.stock`
)

type reconcileRepository struct {
	db *gorm.DB
}

func NewReconcileRepository(db *gorm.DB) ReconcileRepository {
	return &reconcileRepository{db: db}
}

func (r *reconcileRepository) ListProductIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&entity.ProductRating{}).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return ids, nil
}

// RecalculateRating блокирует строку товара, поэтому не перетирает
// рейтинг, который shop-service записывает в параллельной транзакции
func (r *reconcileRepository) RecalculateRating(ctx context.Context, productID uint) (bool, float64, error) {
	var corrected bool
	var avg float64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product entity.ProductRating
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", productID).
			First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}

		var ratings []int
		err = tx.Table("reviews").
			Where("product_id = ?", productID).
			Pluck("rating", &ratings).Error
		if err != nil {
			return fmt.Errorf("failed to load product ratings: %w", err)
		}

		avg = rating.Average(ratings)
		if avg == product.Rating && len(ratings) == product.ReviewsCount {
			return nil
		}

		err = tx.Model(&entity.ProductRating{}).
			Where("id = ?", productID).
			Updates(map[string]interface{}{
				"rating":        avg,
				"reviews_count": len(ratings),
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update product rating: %w", err)
		}
		corrected = true
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	return corrected, avg, nil
}

// ClampCartItems удаляет позиции товаров с нулевым остатком,
// а остальные уменьшает до остатка
func (r *reconcileRepository) ClampCartItems(ctx context.Context) (int64, int64, error) {
	var clamped, removed int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(removeOutOfStockSQL)
		if result.Error != nil {
			return fmt.Errorf("failed to remove out-of-stock cart items: %w", result.Error)
		}
		removed = result.RowsAffected

		result = tx.Exec(clampToStockSQL)
		if result.Error != nil {
			return fmt.Errorf("failed to clamp cart items: %w", result.Error)
		}
		clamped = result.RowsAffected

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return clamped, removed, nil
}
