package mocks

import (
	"context"

	"partshop/background-worker-service/internal/app/background-worker/entity"

	"github.com/stretchr/testify/mock"
)

// MockReconcileRepository мок для ReconcileRepository
type MockReconcileRepository struct {
	mock.Mock
}

func (m *MockReconcileRepository) ListProductIDs(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockReconcileRepository) RecalculateRating(ctx context.Context, productID uint) (bool, float64, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Get(1).(float64), args.Error(2)
}

func (m *MockReconcileRepository) ClampCartItems(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockEventArchiveRepository мок для EventArchiveRepository
type MockEventArchiveRepository struct {
	mock.Mock
}

func (m *MockEventArchiveRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventArchiveRepository) Save(ctx context.Context, event *entity.ArchivedEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventArchiveRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
