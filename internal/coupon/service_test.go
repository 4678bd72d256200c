package coupon

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/kedr891/wishlist-tracker/internal/entity"
	"github.com/kedr891/wishlist-tracker/internal/notification"
	"github.com/kedr891/wishlist-tracker/internal/storage/memstore"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
)

type ServiceSuite struct {
	suite.Suite
	ctx   context.Context
	store *memstore.Store
	svc   *Service
	clock time.Time
	user  *entity.User
	item  *entity.Item
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memstore.New()
	s.clock = time.Date(2024, 11, 29, 8, 0, 0, 0, time.UTC)
	now := func() time.Time { return s.clock }
	sink := notification.NewService(s.store, nil, logger.Nop(), notification.WithClock(now))
	s.svc = NewService(s.store, sink, logger.Nop(), WithClock(now))

	s.user = entity.NewUser("dave", "dave@example.com")
	s.Require().NoError(s.store.CreateUser(s.ctx, s.user))
	s.item = entity.NewItem(s.user.ID, "Kettle")
	s.Require().NoError(s.store.CreateItem(s.ctx, s.item))
}

func (s *ServiceSuite) create(code string) *entity.Coupon {
	created, err := s.svc.Create(s.ctx, s.item.ID, CreateInput{Code: code, DiscountAmount: decimal.NewFromInt(10), IsPercentage: true})
	s.Require().NoError(err)
	return created.Coupon
}

func (s *ServiceSuite) TestCreate_NotifiesOnce() {
	created, err := s.svc.Create(s.ctx, s.item.ID, CreateInput{
		Code:           "SAVE10",
		DiscountAmount: decimal.NewFromInt(10),
		IsPercentage:   true,
	})
	s.Require().NoError(err)

	s.Equal(entity.CouponActive, created.Coupon.Status)
	s.Require().NotNil(created.Coupon.ValidFrom)
	s.Equal(s.clock, *created.Coupon.ValidFrom)

	list, err := s.store.ListNotifications(s.ctx, s.user.ID, entity.NotificationFilter{})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(entity.KindCoupon, list[0].Kind)
	s.Equal(s.item.ID, list[0].ItemID)
	s.Equal("New coupon available for Kettle: SAVE10", list[0].Message)
	s.Equal(list[0].ID, created.Notification.ID)
}

func (s *ServiceSuite) TestCreate_Invalid() {
	tests := []struct {
		name string
		in   CreateInput
	}{
		{name: "empty code", in: CreateInput{Code: "  "}},
		{name: "negative discount", in: CreateInput{Code: "X", DiscountAmount: decimal.NewFromInt(-1)}},
		{name: "until before from", in: CreateInput{Code: "X", ValidUntil: ptr(s.clock.Add(-time.Hour))}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.Create(s.ctx, s.item.ID, tt.in)
			s.ErrorIs(err, entity.ErrInvalidInput)
		})
	}

	count, err := s.store.CountUnread(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ServiceSuite) TestCreate_UnknownItem() {
	_, err := s.svc.Create(s.ctx, uuid.New(), CreateInput{Code: "X"})
	s.ErrorIs(err, entity.ErrNotFound)
}

func (s *ServiceSuite) TestSimulate_Defaults() {
	created, err := s.svc.Simulate(s.ctx, s.item.ID, "", nil)
	s.Require().NoError(err)

	want := "SAVE" + s.item.ID.String()[:8] + "1129"
	s.Equal(strings.ToUpper(want), created.Coupon.Code)
	s.True(created.Coupon.DiscountAmount.Equal(decimal.NewFromInt(15)))
	s.True(created.Coupon.IsPercentage)
	s.Equal("Save 15% on Kettle", created.Coupon.Description)
	s.NotNil(created.Notification)
}

func (s *ServiceSuite) TestSimulate_Overrides() {
	discount := decimal.NewFromInt(30)

	created, err := s.svc.Simulate(s.ctx, s.item.ID, "blackfriday", &discount)
	s.Require().NoError(err)

	s.Equal("BLACKFRIDAY", created.Coupon.Code)
	s.Equal("Save 30% on Kettle", created.Coupon.Description)
}

func (s *ServiceSuite) TestListByItem_ActiveOnly() {
	active := s.create("ACTIVE")
	used := s.create("USED")
	expired := s.create("EXPIRED")

	status := entity.CouponUsed
	_, err := s.svc.Update(s.ctx, used.ID, entity.CouponPatch{Status: &status})
	s.Require().NoError(err)
	_, err = s.svc.Update(s.ctx, expired.ID, entity.CouponPatch{ValidUntil: ptr(s.clock.Add(time.Hour))})
	s.Require().NoError(err)
	s.clock = s.clock.Add(2 * time.Hour)

	all, err := s.svc.ListByItem(s.ctx, s.item.ID, false)
	s.Require().NoError(err)
	s.Len(all, 3)

	onlyActive, err := s.svc.ListByItem(s.ctx, s.item.ID, true)
	s.Require().NoError(err)
	s.Require().Len(onlyActive, 1)
	s.Equal(active.ID, onlyActive[0].ID)
}

func (s *ServiceSuite) TestListByUser() {
	other := entity.NewItem(s.user.ID, "Toaster")
	s.Require().NoError(s.store.CreateItem(s.ctx, other))
	s.create("A")
	_, err := s.svc.Create(s.ctx, other.ID, CreateInput{Code: "B"})
	s.Require().NoError(err)

	coupons, err := s.svc.ListByUser(s.ctx, s.user.ID, false)
	s.Require().NoError(err)
	s.Len(coupons, 2)

	_, err = s.svc.ListByUser(s.ctx, uuid.New(), false)
	s.ErrorIs(err, entity.ErrNotFound)
}

func (s *ServiceSuite) TestUpdate_NoNotification() {
	c := s.create("OLD")
	code := "NEW"

	updated, err := s.svc.Update(s.ctx, c.ID, entity.CouponPatch{Code: &code})
	s.Require().NoError(err)
	s.Equal("NEW", updated.Code)

	count, err := s.store.CountUnread(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ServiceSuite) TestUpdate_Invalid() {
	c := s.create("X")
	empty := ""
	negative := decimal.NewFromInt(-3)

	_, err := s.svc.Update(s.ctx, c.ID, entity.CouponPatch{Code: &empty})
	s.ErrorIs(err, entity.ErrInvalidInput)

	_, err = s.svc.Update(s.ctx, c.ID, entity.CouponPatch{DiscountAmount: &negative})
	s.ErrorIs(err, entity.ErrInvalidInput)

	_, err = s.svc.Update(s.ctx, uuid.New(), entity.CouponPatch{})
	s.ErrorIs(err, entity.ErrNotFound)
}

func (s *ServiceSuite) TestDelete() {
	c := s.create("GONE")

	s.Require().NoError(s.svc.Delete(s.ctx, c.ID))

	_, err := s.svc.Get(s.ctx, c.ID)
	s.ErrorIs(err, entity.ErrNotFound)
	s.ErrorIs(s.svc.Delete(s.ctx, c.ID), entity.ErrNotFound)
}

func ptr[T any](v T) *T {
	return &v
}
