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

// ReviewService управляет отзывами. Рейтинг товара пересчитывается
// репозиторием в одной транзакции с изменением отзыва.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	publisher  infrastructure.MessagePublisher
}

func NewReviewService(reviewRepo repository.ReviewRepository, publisher infrastructure.MessagePublisher) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		publisher:  publisher,
	}
}

// Create добавляет отзыв. Проверки идут в порядке: товар существует, отзыва еще нет, оценка в диапазоне.
func (s *ReviewService) Create(ctx context.Context, userID uint, req *entity.CreateReviewRequest) (*entity.Review, error) {
	review := &entity.Review{
		UserID:    userID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	productRating, err := s.reviewRepo.Create(ctx, review)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrReviewExists):
			return nil, ErrReviewExists
		case errors.Is(err, repository.ErrInvalidRating):
			return nil, ErrInvalidRating
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating))
	s.publish(ctx, events.ReviewCreated, review, productRating)

	return review, nil
}

// Update меняет оценку и комментарий. Редактировать можно только свой отзыв.
func (s *ReviewService) Update(ctx context.Context, userID, reviewID uint, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, productRating, err := s.reviewRepo.Update(ctx, userID, reviewID, req.Rating, req.Comment)
	if err != nil {
		return nil, mapReviewError(err, "update")
	}

	s.publish(ctx, events.ReviewUpdated, review, productRating)
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, userID, reviewID uint) error {
	review, productRating, err := s.reviewRepo.Delete(ctx, userID, reviewID)
	if err != nil {
		return mapReviewError(err, "delete")
	}

	s.publish(ctx, events.ReviewDeleted, review, productRating)
	return nil
}

// ListByProduct возвращает отзывы товара с авторами; для неизвестного товара список пуст
func (s *ReviewService) ListByProduct(ctx context.Context, productID uint) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID uint) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reviews: %w", err)
	}
	return reviews, nil
}

func mapReviewError(err error, operation string) error {
	switch {
	case errors.Is(err, repository.ErrReviewNotFound):
		return ErrReviewNotFound
	case errors.Is(err, repository.ErrNotOwner):
		return ErrForbidden
	case errors.Is(err, repository.ErrInvalidRating):
		return ErrInvalidRating
	}
	return fmt.Errorf("failed to %s review: %w", operation, err)
}

func (s *ReviewService) publish(ctx context.Context, eventType events.EventType, review *entity.Review, productRating float64) {
	event := events.New(eventType)
	event.ProductID = review.ProductID
	event.UserID = review.UserID
	event.Rating = productRating
	publishEvent(ctx, s.publisher, event)
}
