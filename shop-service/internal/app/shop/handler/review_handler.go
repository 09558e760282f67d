package handler

import (
	"net/http"

	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req entity.CreateReviewRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), user.ID, &req)
	if err != nil {
		handleServiceError(c, err, "create review")
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetProductReviews - публичный список отзывов товара с авторами
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		handleServiceError(c, err, "get reviews")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) GetMyReviews(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		handleServiceError(c, err, "get reviews")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	reviewID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req entity.UpdateReviewRequest
	if !bindJSON(c, h.validator, &req) {
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), user.ID, reviewID, &req)
	if err != nil {
		handleServiceError(c, err, "update review")
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	reviewID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), user.ID, reviewID); err != nil {
		handleServiceError(c, err, "delete review")
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Review deleted"})
}
