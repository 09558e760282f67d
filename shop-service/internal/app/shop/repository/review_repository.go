package repository

import (
	"context"
	"errors"
	"fmt"

	"partshop/pkg/rating"
	"partshop/shop-service/internal/app/shop/entity"

	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create сохраняет отзыв и пересчитывает рейтинг товара в одной транзакции.
// Блокировка строки товара упорядочивает параллельные пересчеты.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) (float64, error) {
	var productRating float64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockProduct(tx, review.ProductID); err != nil {
			return err
		}

		var existing int64
		err := tx.Model(&entity.Review{}).
			Where("user_id = ? AND product_id = ?", review.UserID, review.ProductID).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to check existing review: %w", err)
		}
		if existing > 0 {
			return ErrReviewExists
		}
		if !rating.Valid(review.Rating) {
			return ErrInvalidRating
		}

		if err := tx.Omit("User", "Product").Create(review).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrReviewExists
			}
			return fmt.Errorf("failed to create review: %w", err)
		}

		productRating, err = recalculateRating(tx, review.ProductID)
		return err
	})
	if err != nil {
		return 0, err
	}

	return productRating, nil
}

// Update меняет оценку и комментарий отзыва владельца и пересчитывает рейтинг товара.
// Диапазон оценки проверяется после проверок существования и владельца.
func (r *reviewRepository) Update(ctx context.Context, userID, reviewID uint, newRating int, comment string) (*entity.Review, float64, error) {
	var review entity.Review
	var productRating float64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwnedReview(tx, userID, reviewID, &review); err != nil {
			return err
		}
		if !rating.Valid(newRating) {
			return ErrInvalidRating
		}

		err := tx.Model(&review).Updates(map[string]interface{}{
			"rating":  newRating,
			"comment": comment,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		review.Rating = newRating
		review.Comment = comment

		productRating, err = recalculateRating(tx, review.ProductID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return &review, productRating, nil
}

// Delete удаляет отзыв владельца и пересчитывает рейтинг товара (0.0, если отзывов не осталось)
func (r *reviewRepository) Delete(ctx context.Context, userID, reviewID uint) (*entity.Review, float64, error) {
	var review entity.Review
	var productRating float64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwnedReview(tx, userID, reviewID, &review); err != nil {
			return err
		}

		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		var err error
		productRating, err = recalculateRating(tx, review.ProductID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return &review, productRating, nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID uint) ([]entity.Review, error) {
	var reviews []entity.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list product reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Review, error) {
	var reviews []entity.Review
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user reviews: %w", err)
	}
	return reviews, nil
}

// lockOwnedReview находит отзыв, проверяет владельца и блокирует сначала товар, затем отзыв.
// Несуществующий отзыв дает ErrReviewNotFound, чужой - ErrNotOwner.
func lockOwnedReview(tx *gorm.DB, userID, reviewID uint, review *entity.Review) error {
	if err := tx.First(review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}
	if review.UserID != userID {
		return ErrNotOwner
	}

	if _, err := lockProduct(tx, review.ProductID); err != nil {
		return err
	}

	// Отзыв мог быть удален, пока ждали блокировку товара
	if err := tx.Clauses(forUpdate).First(review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to lock review: %w", err)
	}

	return nil
}

// recalculateRating полностью пересчитывает rating и reviews_count товара по его отзывам
func recalculateRating(tx *gorm.DB, productID uint) (float64, error) {
	var ratings []int
	err := tx.Model(&entity.Review{}).
		Where("product_id = ?", productID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load product ratings: %w", err)
	}

	avg := rating.Average(ratings)

	err = tx.Model(&entity.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":        avg,
			"reviews_count": len(ratings),
		}).Error
	if err != nil {
		return 0, fmt.Errorf("failed to update product rating: %w", err)
	}

	return avg, nil
}
