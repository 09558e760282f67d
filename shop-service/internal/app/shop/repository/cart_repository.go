package repository

import (
	"context"
	"errors"
	"fmt"

	"partshop/shop-service/internal/app/shop/entity"

	"gorm.io/gorm"
)

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) ListByUser(ctx context.Context, userID uint) ([]entity.CartItem, error) {
	var items []entity.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

// AddItem добавляет товар в корзину или увеличивает количество существующей позиции.
// Строка товара блокируется (FOR UPDATE) на время проверки остатка и записи,
// поэтому конкурентные добавления одного товара выполняются последовательно.
func (r *cartRepository) AddItem(ctx context.Context, userID, productID uint, quantity int) (*entity.CartItem, error) {
	var item entity.CartItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}

		err = tx.Clauses(forUpdate).
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&item).Error
		switch {
		case err == nil:
			if item.Quantity+quantity > product.Stock {
				return ErrInsufficientStock
			}
			newQuantity := item.Quantity + quantity
			if err := tx.Model(&item).Update("quantity", newQuantity).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
			item.Quantity = newQuantity
		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantity > product.Stock {
				return ErrInsufficientStock
			}
			item = entity.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
			if err := tx.Omit("User", "Product").Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create cart item: %w", err)
			}
		default:
			return fmt.Errorf("failed to get cart item: %w", err)
		}

		item.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// UpdateQuantity устанавливает количество позиции корзины владельца.
// Чужая и несуществующая позиции неразличимы: обе дают ErrCartItemNotFound.
func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*entity.CartItem, error) {
	var item entity.CartItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Порядок блокировок как в AddItem: сначала товар, затем позиция корзины
		var productIDs []uint
		err := tx.Model(&entity.CartItem{}).
			Where("id = ? AND user_id = ?", itemID, userID).
			Pluck("product_id", &productIDs).Error
		if err != nil {
			return fmt.Errorf("failed to get cart item: %w", err)
		}
		if len(productIDs) == 0 {
			return ErrCartItemNotFound
		}

		product, err := lockProduct(tx, productIDs[0])
		if err != nil {
			return err
		}

		err = tx.Clauses(forUpdate).
			Where("id = ? AND user_id = ?", itemID, userID).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return fmt.Errorf("failed to get cart item: %w", err)
		}

		if quantity > product.Stock {
			return ErrInsufficientStock
		}

		if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		item.Quantity = quantity

		item.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// Delete удаляет позицию корзины владельца и возвращает удаленную строку
func (r *cartRepository) Delete(ctx context.Context, userID, itemID uint) (*entity.CartItem, error) {
	var item entity.CartItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(forUpdate).
			Where("id = ? AND user_id = ?", itemID, userID).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return fmt.Errorf("failed to get cart item: %w", err)
		}

		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("failed to delete cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// lockProduct читает товар с блокировкой строки до конца транзакции
func lockProduct(tx *gorm.DB, productID uint) (*entity.Product, error) {
	var product entity.Product
	if err := tx.Clauses(forUpdate).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return &product, nil
}
