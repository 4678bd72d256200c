// Package memstore is an in-process Store used for local runs and tests.
// Transactions are serialized on one mutex and applied to a cloned state on
// commit, so a failing callback leaves nothing behind.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
)

type state struct {
	users         map[uuid.UUID]entity.User
	items         map[uuid.UUID]entity.Item
	observations  []entity.PriceObservation
	coupons       []entity.Coupon
	notifications []entity.Notification
}

func newState() *state {
	return &state{
		users: make(map[uuid.UUID]entity.User),
		items: make(map[uuid.UUID]entity.Item),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:         make(map[uuid.UUID]entity.User, len(s.users)),
		items:         make(map[uuid.UUID]entity.Item, len(s.items)),
		observations:  append([]entity.PriceObservation(nil), s.observations...),
		coupons:       append([]entity.Coupon(nil), s.coupons...),
		notifications: append([]entity.Notification(nil), s.notifications...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	return c
}

type Store struct {
	mu sync.Mutex
	st *state
}

var _ domain.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) InTx(ctx context.Context, fn func(repo domain.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.st.clone()
	if err := fn(&repo{st: draft}); err != nil {
		return err
	}
	s.st = draft

	return nil
}

func (s *Store) HealthCheck(context.Context) error {
	return nil
}

// locked runs fn against the committed state.
func locked[T any](s *Store, fn func(r *repo) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&repo{st: s.st})
}

func lockedErr(s *Store, fn func(r *repo) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&repo{st: s.st})
}

func (s *Store) CreateUser(ctx context.Context, user *entity.User) error {
	return lockedErr(s, func(r *repo) error { return r.CreateUser(ctx, user) })
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return locked(s, func(r *repo) (*entity.User, error) { return r.GetUser(ctx, id) })
}

func (s *Store) CreateItem(ctx context.Context, item *entity.Item) error {
	return lockedErr(s, func(r *repo) error { return r.CreateItem(ctx, item) })
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	return locked(s, func(r *repo) (*entity.Item, error) { return r.GetItem(ctx, id) })
}

func (s *Store) GetItemForUpdate(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	return locked(s, func(r *repo) (*entity.Item, error) { return r.GetItemForUpdate(ctx, id) })
}

func (s *Store) ListItems(ctx context.Context, userID uuid.UUID, filter entity.ItemFilter) ([]entity.Item, error) {
	return locked(s, func(r *repo) ([]entity.Item, error) { return r.ListItems(ctx, userID, filter) })
}

func (s *Store) UpdateItem(ctx context.Context, item *entity.Item) error {
	return lockedErr(s, func(r *repo) error { return r.UpdateItem(ctx, item) })
}

func (s *Store) UpdateItemPrices(ctx context.Context, item *entity.Item) error {
	return lockedErr(s, func(r *repo) error { return r.UpdateItemPrices(ctx, item) })
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return lockedErr(s, func(r *repo) error { return r.DeleteItem(ctx, id) })
}

func (s *Store) AppendObservation(ctx context.Context, obs *entity.PriceObservation) error {
	return lockedErr(s, func(r *repo) error { return r.AppendObservation(ctx, obs) })
}

func (s *Store) ListObservations(ctx context.Context, itemID uuid.UUID) ([]entity.PriceObservation, error) {
	return locked(s, func(r *repo) ([]entity.PriceObservation, error) { return r.ListObservations(ctx, itemID) })
}

func (s *Store) CreateCoupon(ctx context.Context, c *entity.Coupon) error {
	return lockedErr(s, func(r *repo) error { return r.CreateCoupon(ctx, c) })
}

func (s *Store) GetCoupon(ctx context.Context, id uuid.UUID) (*entity.Coupon, error) {
	return locked(s, func(r *repo) (*entity.Coupon, error) { return r.GetCoupon(ctx, id) })
}

func (s *Store) ListCouponsByItem(ctx context.Context, itemID uuid.UUID) ([]entity.Coupon, error) {
	return locked(s, func(r *repo) ([]entity.Coupon, error) { return r.ListCouponsByItem(ctx, itemID) })
}

func (s *Store) ListCouponsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Coupon, error) {
	return locked(s, func(r *repo) ([]entity.Coupon, error) { return r.ListCouponsByUser(ctx, userID) })
}

func (s *Store) UpdateCoupon(ctx context.Context, c *entity.Coupon) error {
	return lockedErr(s, func(r *repo) error { return r.UpdateCoupon(ctx, c) })
}

func (s *Store) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	return lockedErr(s, func(r *repo) error { return r.DeleteCoupon(ctx, id) })
}

func (s *Store) CreateNotification(ctx context.Context, n *entity.Notification) error {
	return lockedErr(s, func(r *repo) error { return r.CreateNotification(ctx, n) })
}

func (s *Store) GetNotification(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	return locked(s, func(r *repo) (*entity.Notification, error) { return r.GetNotification(ctx, id) })
}

func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, filter entity.NotificationFilter) ([]entity.Notification, error) {
	return locked(s, func(r *repo) ([]entity.Notification, error) { return r.ListNotifications(ctx, userID, filter) })
}

func (s *Store) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return locked(s, func(r *repo) (int, error) { return r.CountUnread(ctx, userID) })
}

func (s *Store) MarkNotificationRead(ctx context.Context, id uuid.UUID, at time.Time) (*entity.Notification, error) {
	return locked(s, func(r *repo) (*entity.Notification, error) { return r.MarkNotificationRead(ctx, id, at) })
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID, at time.Time) (int, error) {
	return locked(s, func(r *repo) (int, error) { return r.MarkAllNotificationsRead(ctx, userID, at) })
}

func (s *Store) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	return lockedErr(s, func(r *repo) error { return r.DeleteNotification(ctx, id) })
}
