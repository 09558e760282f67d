package handler

import (
	"net/http"
	"testing"

	"partshop/shop-service/internal/app/shop/entity"
	"partshop/shop-service/internal/app/shop/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviewHandler_CreateReview(t *testing.T) {
	env := newTestEnv()
	user := buyer()
	token := env.login(t, user)
	env.reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Review")).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Review).ID = 12 }).
		Return(4.0, nil)

	w := env.do(http.MethodPost, "/api/v1/reviews", map[string]interface{}{
		"product_id": 5,
		"rating":     4,
		"comment":    "Быстрый",
	}, token)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":12`)
}

func TestReviewHandler_CreateReview_Validation(t *testing.T) {
	tests := []struct {
		name    string
		rating  int
		repoErr error
		status  int
		detail  string
	}{
		{"rating too high", 6, repository.ErrInvalidRating, http.StatusBadRequest, "Rating must be between 1 and 5"},
		{"bad rating on unknown product", 9, repository.ErrProductNotFound, http.StatusNotFound, "Product not found"},
		{"duplicate", 3, repository.ErrReviewExists, http.StatusBadRequest, "You have already reviewed this product"},
		{"unknown product", 3, repository.ErrProductNotFound, http.StatusNotFound, "Product not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			token := env.login(t, buyer())
			if tt.repoErr != nil {
				env.reviewRepo.On("Create", mock.Anything, mock.Anything).Return(0.0, tt.repoErr)
			}

			w := env.do(http.MethodPost, "/api/v1/reviews", map[string]interface{}{
				"product_id": 5,
				"rating":     tt.rating,
			}, token)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.detail, decodeError(t, w).Detail)
		})
	}
}

func TestReviewHandler_DeleteReview_ForeignAndMissing(t *testing.T) {
	env := newTestEnv()
	user := buyer()
	token := env.login(t, user)
	env.reviewRepo.On("Delete", mock.Anything, user.ID, uint(10)).Return(nil, 0.0, repository.ErrNotOwner)
	env.reviewRepo.On("Delete", mock.Anything, user.ID, uint(11)).Return(nil, 0.0, repository.ErrReviewNotFound)

	foreign := env.do(http.MethodDelete, "/api/v1/reviews/10", nil, token)
	missing := env.do(http.MethodDelete, "/api/v1/reviews/11", nil, token)

	assert.Equal(t, http.StatusForbidden, foreign.Code)
	assert.Equal(t, "Not enough permissions", decodeError(t, foreign).Detail)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Review not found", decodeError(t, missing).Detail)
}

func TestReviewHandler_GetProductReviews_Public(t *testing.T) {
	env := newTestEnv()
	env.reviewRepo.On("ListByProduct", mock.Anything, uint(5)).Return([]entity.Review{
		{ID: 1, ProductID: 5, UserID: 2, Rating: 5, User: buyer()},
	}, nil)

	w := env.do(http.MethodGet, "/api/v1/reviews/product/5", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"buyer"`)
}

func TestReviewHandler_GetMyReviews(t *testing.T) {
	env := newTestEnv()
	user := buyer()
	token := env.login(t, user)
	env.reviewRepo.On("ListByUser", mock.Anything, user.ID).Return([]entity.Review{
		{ID: 1, ProductID: 5, UserID: user.ID, Rating: 4, Product: &entity.Product{ID: 5, Name: "AMD Ryzen 9 5950X"}},
	}, nil)

	w := env.do(http.MethodGet, "/api/v1/reviews/user/me", nil, token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AMD Ryzen 9 5950X")
}
