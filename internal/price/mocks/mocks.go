// Package mocks holds testify mocks for the price package interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

type MockHistoryCache struct {
	mock.Mock
}

func (m *MockHistoryCache) Get(ctx context.Context, itemID uuid.UUID, version string) ([]entity.PriceObservation, error) {
	args := m.Called(ctx, itemID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PriceObservation), args.Error(1)
}

func (m *MockHistoryCache) Set(ctx context.Context, itemID uuid.UUID, version string, history []entity.PriceObservation) error {
	args := m.Called(ctx, itemID, version, history)
	return args.Error(0)
}

func (m *MockHistoryCache) Invalidate(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

type MockPriceUpdater struct {
	mock.Mock
}

func (m *MockPriceUpdater) RecordObserved(ctx context.Context, itemID uuid.UUID, price decimal.NullDecimal, observedAt time.Time) (*entity.PriceUpdate, error) {
	args := m.Called(ctx, itemID, price, observedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PriceUpdate), args.Error(1)
}
