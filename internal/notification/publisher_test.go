package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

type MockMessageWriter struct {
	mock.Mock
}

func (m *MockMessageWriter) WriteMessage(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type MockRoutePublisher struct {
	mock.Mock
}

func (m *MockRoutePublisher) Publish(ctx context.Context, route string, v interface{}) error {
	args := m.Called(ctx, route, v)
	return args.Error(0)
}

func TestKafkaPublisher_KeysByUser(t *testing.T) {
	n := entity.NewNotification(uuid.New(), uuid.New(), entity.KindPriceDrop, "x", time.Now())

	writer := new(MockMessageWriter)
	writer.On("WriteMessage", mock.Anything, n.UserID.String(), n).Return(nil)

	err := NewKafkaPublisher(writer).Publish(context.Background(), n)

	assert.NoError(t, err)
	writer.AssertExpectations(t)
}

func TestRoutedPublisher_Route(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		kind   entity.NotificationKind
		want   string
	}{
		{name: "with prefix", prefix: "wishlist.notifications", kind: entity.KindPriceDrop, want: "wishlist.notifications.price_drop"},
		{name: "routing key only", prefix: "", kind: entity.KindCoupon, want: "coupon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := entity.NewNotification(uuid.New(), uuid.New(), tt.kind, "x", time.Now())

			pub := new(MockRoutePublisher)
			pub.On("Publish", mock.Anything, tt.want, n).Return(nil)

			err := NewRoutedPublisher(pub, tt.prefix).Publish(context.Background(), n)

			assert.NoError(t, err)
			pub.AssertExpectations(t)
		})
	}
}
