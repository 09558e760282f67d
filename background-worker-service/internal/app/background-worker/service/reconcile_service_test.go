package service

import (
	"context"
	"errors"
	"testing"

	"partshop/background-worker-service/internal/app/background-worker/repository"
	"partshop/background-worker-service/internal/app/background-worker/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReconcile_Success(t *testing.T) {
	reconcileRepo := new(mocks.MockReconcileRepository)
	svc := NewReconcileService(reconcileRepo)
	ctx := context.Background()

	reconcileRepo.On("ListProductIDs", ctx).Return([]uint{1, 2, 3}, nil)
	reconcileRepo.On("RecalculateRating", ctx, uint(1)).Return(false, 4.5, nil)
	reconcileRepo.On("RecalculateRating", ctx, uint(2)).Return(true, 3.0, nil)
	// товар 3 удалили между выборкой и пересчетом
	reconcileRepo.On("RecalculateRating", ctx, uint(3)).Return(false, 0.0, repository.ErrProductNotFound)
	reconcileRepo.On("ClampCartItems", ctx).Return(int64(2), int64(1), nil)

	report, err := svc.Reconcile(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, report.ProductsChecked)
	assert.Equal(t, 1, report.RatingsCorrected)
	assert.Equal(t, int64(2), report.CartItemsClamped)
	assert.Equal(t, int64(1), report.CartItemsRemoved)
	reconcileRepo.AssertExpectations(t)
}

func TestReconcile_NoProducts(t *testing.T) {
	reconcileRepo := new(mocks.MockReconcileRepository)
	svc := NewReconcileService(reconcileRepo)
	ctx := context.Background()

	reconcileRepo.On("ListProductIDs", ctx).Return([]uint{}, nil)
	reconcileRepo.On("ClampCartItems", ctx).Return(int64(0), int64(0), nil)

	report, err := svc.Reconcile(ctx)

	require.NoError(t, err)
	assert.Zero(t, report.ProductsChecked)
}

func TestReconcile_ListError(t *testing.T) {
	reconcileRepo := new(mocks.MockReconcileRepository)
	svc := NewReconcileService(reconcileRepo)
	ctx := context.Background()

	reconcileRepo.On("ListProductIDs", ctx).Return(nil, errors.New("db down"))

	report, err := svc.Reconcile(ctx)

	assert.Error(t, err)
	assert.Nil(t, report)
	reconcileRepo.AssertNotCalled(t, "ClampCartItems", mock.Anything)
}

func TestReconcile_RatingErrorAborts(t *testing.T) {
	reconcileRepo := new(mocks.MockReconcileRepository)
	svc := NewReconcileService(reconcileRepo)
	ctx := context.Background()

	reconcileRepo.On("ListProductIDs", ctx).Return([]uint{1, 2}, nil)
	reconcileRepo.On("RecalculateRating", ctx, uint(1)).Return(false, 0.0, errors.New("deadlock detected"))

	_, err := svc.Reconcile(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reconcile product 1")
	reconcileRepo.AssertNotCalled(t, "RecalculateRating", ctx, uint(2))
}

func TestReconcile_CancelledContext(t *testing.T) {
	reconcileRepo := new(mocks.MockReconcileRepository)
	svc := NewReconcileService(reconcileRepo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reconcileRepo.On("ListProductIDs", ctx).Return([]uint{1}, nil)

	_, err := svc.Reconcile(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	reconcileRepo.AssertNotCalled(t, "RecalculateRating", mock.Anything, mock.Anything)
}

func TestReconcile_ClampError(t *testing.T) {
	reconcileRepo := new(mocks.MockReconcileRepository)
	svc := NewReconcileService(reconcileRepo)
	ctx := context.Background()

	reconcileRepo.On("ListProductIDs", ctx).Return([]uint{}, nil)
	reconcileRepo.On("ClampCartItems", ctx).Return(int64(0), int64(0), errors.New("lock timeout"))

	report, err := svc.Reconcile(ctx)

	assert.Error(t, err)
	assert.Nil(t, report)
}
