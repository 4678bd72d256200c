package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	user  *entity.User
	item  *entity.Item
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()
	s.user = entity.NewUser("alice", "alice@example.com")
	s.Require().NoError(s.store.CreateUser(s.ctx, s.user))
	s.item = entity.NewItem(s.user.ID, "Bike")
	s.Require().NoError(s.store.CreateItem(s.ctx, s.item))
}

func (s *StoreSuite) TestInTx_RollbackOnError() {
	boom := errors.New("boom")

	err := s.store.InTx(s.ctx, func(repo domain.Repository) error {
		s.Require().NoError(repo.AppendObservation(s.ctx, entity.NewPriceObservation(s.item.ID, decimal.NewFromInt(5), time.Now())))
		n := entity.NewNotification(s.user.ID, s.item.ID, entity.KindPriceDrop, "x", time.Now())
		s.Require().NoError(repo.CreateNotification(s.ctx, n))
		return boom
	})

	s.ErrorIs(err, boom)
	history, err := s.store.ListObservations(s.ctx, s.item.ID)
	s.Require().NoError(err)
	s.Empty(history)
	count, err := s.store.CountUnread(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *StoreSuite) TestInTx_Commit() {
	err := s.store.InTx(s.ctx, func(repo domain.Repository) error {
		return repo.AppendObservation(s.ctx, entity.NewPriceObservation(s.item.ID, decimal.NewFromInt(5), time.Now()))
	})

	s.Require().NoError(err)
	history, err := s.store.ListObservations(s.ctx, s.item.ID)
	s.Require().NoError(err)
	s.Len(history, 1)
}

func (s *StoreSuite) TestListObservations_TiesNewestInsertedFirst() {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := entity.NewPriceObservation(s.item.ID, decimal.NewFromInt(100), at)
	second := entity.NewPriceObservation(s.item.ID, decimal.NewFromInt(90), at)
	older := entity.NewPriceObservation(s.item.ID, decimal.NewFromInt(120), at.Add(-time.Hour))
	for _, obs := range []*entity.PriceObservation{older, first, second} {
		s.Require().NoError(s.store.AppendObservation(s.ctx, obs))
	}

	history, err := s.store.ListObservations(s.ctx, s.item.ID)

	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal(second.ID, history[0].ID)
	s.Equal(first.ID, history[1].ID)
	s.Equal(older.ID, history[2].ID)
}

func (s *StoreSuite) TestListNotifications_StableOnEqualTimestamps() {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := entity.NewNotification(s.user.ID, s.item.ID, entity.KindCoupon, "a", at)
	b := entity.NewNotification(s.user.ID, s.item.ID, entity.KindCoupon, "b", at)
	newer := entity.NewNotification(s.user.ID, s.item.ID, entity.KindPriceDrop, "c", at.Add(time.Minute))
	for _, n := range []*entity.Notification{a, b, newer} {
		s.Require().NoError(s.store.CreateNotification(s.ctx, n))
	}

	list, err := s.store.ListNotifications(s.ctx, s.user.ID, entity.NotificationFilter{})

	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{"c", "a", "b"}, []string{list[0].Message, list[1].Message, list[2].Message})
}

func (s *StoreSuite) TestDeleteItem_CascadesButKeepsNotifications() {
	s.Require().NoError(s.store.AppendObservation(s.ctx, entity.NewPriceObservation(s.item.ID, decimal.NewFromInt(1), time.Now())))
	s.Require().NoError(s.store.CreateCoupon(s.ctx, entity.NewCoupon(s.item.ID, "X", time.Now())))
	s.Require().NoError(s.store.CreateNotification(s.ctx, entity.NewNotification(s.user.ID, s.item.ID, entity.KindCoupon, "m", time.Now())))

	s.Require().NoError(s.store.DeleteItem(s.ctx, s.item.ID))

	history, _ := s.store.ListObservations(s.ctx, s.item.ID)
	s.Empty(history)
	coupons, _ := s.store.ListCouponsByItem(s.ctx, s.item.ID)
	s.Empty(coupons)
	list, _ := s.store.ListNotifications(s.ctx, s.user.ID, entity.NotificationFilter{})
	s.Len(list, 1)
	s.ErrorIs(s.store.DeleteItem(s.ctx, s.item.ID), entity.ErrNotFound)
}

func (s *StoreSuite) TestCreateUser_Conflict() {
	err := s.store.CreateUser(s.ctx, entity.NewUser("alice", "other@example.com"))
	s.ErrorIs(err, entity.ErrConflict)
}

func (s *StoreSuite) TestCreateItem_UnknownUser() {
	err := s.store.CreateItem(s.ctx, entity.NewItem(uuid.New(), "Ghost"))
	s.ErrorIs(err, entity.ErrNotFound)
}

func (s *StoreSuite) TestUpdateItemPrices_KeepsInitialPrice() {
	s.item.InitialPrice = decimal.NewNullDecimal(decimal.NewFromInt(10))
	s.item.CurrentPrice = decimal.NewNullDecimal(decimal.NewFromInt(7))

	s.Require().NoError(s.store.UpdateItemPrices(s.ctx, s.item))

	stored, err := s.store.GetItem(s.ctx, s.item.ID)
	s.Require().NoError(err)
	s.False(stored.InitialPrice.Valid)
	s.True(stored.CurrentPrice.Decimal.Equal(decimal.NewFromInt(7)))
}
