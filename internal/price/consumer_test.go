package price

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kedr891/wishlist-tracker/internal/entity"
	"github.com/kedr891/wishlist-tracker/internal/price/mocks"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
)

func TestConsumer_Handle(t *testing.T) {
	itemID := uuid.New()
	valid := []byte(`{"item_id":"` + itemID.String() + `","price":"42.50","source":"scraper","observed_at":"2024-05-10T09:00:00Z"}`)
	want := decimal.NewNullDecimal(decimal.RequireFromString("42.50"))
	observedAt := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   []byte
		setup   func(m *mocks.MockPriceUpdater)
		wantErr bool
	}{
		{
			name:  "applied",
			value: valid,
			setup: func(m *mocks.MockPriceUpdater) {
				m.On("RecordObserved", mock.Anything, itemID, want, observedAt).
					Return(&entity.PriceUpdate{Item: &entity.Item{ID: itemID}}, nil)
			},
		},
		{
			name:  "unknown item is skipped",
			value: valid,
			setup: func(m *mocks.MockPriceUpdater) {
				m.On("RecordObserved", mock.Anything, itemID, want, observedAt).Return(nil, entity.NotFoundf("item %s", itemID))
			},
		},
		{
			name:  "invalid price is skipped",
			value: valid,
			setup: func(m *mocks.MockPriceUpdater) {
				m.On("RecordObserved", mock.Anything, itemID, want, observedAt).Return(nil, entity.Invalidf("bad"))
			},
		},
		{
			name:  "storage failure is retried",
			value: valid,
			setup: func(m *mocks.MockPriceUpdater) {
				m.On("RecordObserved", mock.Anything, itemID, want, observedAt).Return(nil, entity.ErrStorageUnavailable)
			},
			wantErr: true,
		},
		{
			name:  "malformed payload is skipped",
			value: []byte(`{not json`),
			setup: func(*mocks.MockPriceUpdater) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updater := new(mocks.MockPriceUpdater)
			tt.setup(updater)
			c := NewConsumer(nil, updater, logger.Nop(), 3)

			err := c.Handle(context.Background(), kafkago.Message{Value: tt.value, Time: time.Now()})

			if tt.wantErr {
				assert.True(t, errors.Is(err, entity.ErrStorageUnavailable))
			} else {
				assert.NoError(t, err)
			}
			updater.AssertExpectations(t)
		})
	}
}

func TestConsumer_MissingPriceIsPassedAsUnset(t *testing.T) {
	itemID := uuid.New()
	updater := new(mocks.MockPriceUpdater)
	updater.On("RecordObserved", mock.Anything, itemID, decimal.NullDecimal{}, time.Time{}).Return(nil, entity.Invalidf("price is required"))

	c := NewConsumer(nil, updater, logger.Nop(), 3)
	err := c.Handle(context.Background(), kafkago.Message{Value: []byte(`{"item_id":"` + itemID.String() + `"}`)})

	assert.NoError(t, err)
	updater.AssertExpectations(t)
}
