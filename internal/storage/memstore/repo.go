package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
)

// repo operates on a state the caller has already locked.
type repo struct {
	st *state
}

var _ domain.Repository = (*repo)(nil)

func (r *repo) CreateUser(_ context.Context, user *entity.User) error {
	for _, u := range r.st.users {
		if u.ID == user.ID || u.Username == user.Username || u.Email == user.Email {
			return entity.ErrConflict
		}
	}
	r.st.users[user.ID] = *user
	return nil
}

func (r *repo) GetUser(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, entity.NotFoundf("user %s", id)
	}
	return &u, nil
}

func (r *repo) CreateItem(_ context.Context, item *entity.Item) error {
	if _, ok := r.st.users[item.UserID]; !ok {
		return entity.NotFoundf("user %s", item.UserID)
	}
	if _, ok := r.st.items[item.ID]; ok {
		return entity.ErrConflict
	}
	r.st.items[item.ID] = *item
	return nil
}

func (r *repo) GetItem(_ context.Context, id uuid.UUID) (*entity.Item, error) {
	item, ok := r.st.items[id]
	if !ok {
		return nil, entity.NotFoundf("item %s", id)
	}
	return &item, nil
}

// GetItemForUpdate needs no row lock: the whole store is locked for the transaction.
func (r *repo) GetItemForUpdate(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	return r.GetItem(ctx, id)
}

func (r *repo) ListItems(_ context.Context, userID uuid.UUID, filter entity.ItemFilter) ([]entity.Item, error) {
	items := make([]entity.Item, 0)
	for _, item := range r.st.items {
		if item.UserID == userID && filter.Match(&item) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return items, nil
}

func (r *repo) UpdateItem(_ context.Context, item *entity.Item) error {
	stored, ok := r.st.items[item.ID]
	if !ok {
		return entity.NotFoundf("item %s", item.ID)
	}
	stored.Name = item.Name
	stored.Description = item.Description
	stored.URL = item.URL
	stored.ImageURL = item.ImageURL
	stored.Category = item.Category
	stored.IsPurchased = item.IsPurchased
	stored.Priority = item.Priority
	stored.UpdatedAt = item.UpdatedAt
	r.st.items[item.ID] = stored
	return nil
}

func (r *repo) UpdateItemPrices(_ context.Context, item *entity.Item) error {
	stored, ok := r.st.items[item.ID]
	if !ok {
		return entity.NotFoundf("item %s", item.ID)
	}
	stored.CurrentPrice = item.CurrentPrice
	stored.LowestPrice = item.LowestPrice
	stored.HighestPrice = item.HighestPrice
	stored.UpdatedAt = item.UpdatedAt
	r.st.items[item.ID] = stored
	return nil
}

// DeleteItem cascades to observations and coupons. Notifications stay.
func (r *repo) DeleteItem(_ context.Context, id uuid.UUID) error {
	if _, ok := r.st.items[id]; !ok {
		return entity.NotFoundf("item %s", id)
	}
	delete(r.st.items, id)

	observations := r.st.observations[:0]
	for _, obs := range r.st.observations {
		if obs.ItemID != id {
			observations = append(observations, obs)
		}
	}
	r.st.observations = observations

	coupons := r.st.coupons[:0]
	for _, c := range r.st.coupons {
		if c.ItemID != id {
			coupons = append(coupons, c)
		}
	}
	r.st.coupons = coupons

	return nil
}

func (r *repo) AppendObservation(_ context.Context, obs *entity.PriceObservation) error {
	if _, ok := r.st.items[obs.ItemID]; !ok {
		return entity.NotFoundf("item %s", obs.ItemID)
	}
	r.st.observations = append(r.st.observations, *obs)
	return nil
}

func (r *repo) ListObservations(_ context.Context, itemID uuid.UUID) ([]entity.PriceObservation, error) {
	history := make([]entity.PriceObservation, 0)
	for i := len(r.st.observations) - 1; i >= 0; i-- {
		if r.st.observations[i].ItemID == itemID {
			history = append(history, r.st.observations[i])
		}
	}
	// history is newest-inserted first; the stable sort keeps that for equal timestamps.
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].RecordedAt.After(history[j].RecordedAt)
	})
	return history, nil
}

func (r *repo) CreateCoupon(_ context.Context, c *entity.Coupon) error {
	if _, ok := r.st.items[c.ItemID]; !ok {
		return entity.NotFoundf("item %s", c.ItemID)
	}
	r.st.coupons = append(r.st.coupons, *c)
	return nil
}

func (r *repo) couponIndex(id uuid.UUID) int {
	for i := range r.st.coupons {
		if r.st.coupons[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *repo) GetCoupon(_ context.Context, id uuid.UUID) (*entity.Coupon, error) {
	i := r.couponIndex(id)
	if i < 0 {
		return nil, entity.NotFoundf("coupon %s", id)
	}
	c := r.st.coupons[i]
	return &c, nil
}

func (r *repo) ListCouponsByItem(_ context.Context, itemID uuid.UUID) ([]entity.Coupon, error) {
	return r.collectCoupons(func(c *entity.Coupon) bool { return c.ItemID == itemID }), nil
}

func (r *repo) ListCouponsByUser(_ context.Context, userID uuid.UUID) ([]entity.Coupon, error) {
	return r.collectCoupons(func(c *entity.Coupon) bool {
		item, ok := r.st.items[c.ItemID]
		return ok && item.UserID == userID
	}), nil
}

func (r *repo) collectCoupons(keep func(c *entity.Coupon) bool) []entity.Coupon {
	coupons := make([]entity.Coupon, 0)
	for i := len(r.st.coupons) - 1; i >= 0; i-- {
		if keep(&r.st.coupons[i]) {
			coupons = append(coupons, r.st.coupons[i])
		}
	}
	sort.SliceStable(coupons, func(i, j int) bool {
		return coupons[i].CreatedAt.After(coupons[j].CreatedAt)
	})
	return coupons
}

func (r *repo) UpdateCoupon(_ context.Context, c *entity.Coupon) error {
	i := r.couponIndex(c.ID)
	if i < 0 {
		return entity.NotFoundf("coupon %s", c.ID)
	}
	stored := &r.st.coupons[i]
	stored.Code = c.Code
	stored.Description = c.Description
	stored.DiscountAmount = c.DiscountAmount
	stored.IsPercentage = c.IsPercentage
	stored.Status = c.Status
	stored.ValidUntil = c.ValidUntil
	return nil
}

func (r *repo) DeleteCoupon(_ context.Context, id uuid.UUID) error {
	i := r.couponIndex(id)
	if i < 0 {
		return entity.NotFoundf("coupon %s", id)
	}
	r.st.coupons = append(r.st.coupons[:i], r.st.coupons[i+1:]...)
	return nil
}

func (r *repo) CreateNotification(_ context.Context, n *entity.Notification) error {
	if _, ok := r.st.users[n.UserID]; !ok {
		return entity.NotFoundf("user %s", n.UserID)
	}
	r.st.notifications = append(r.st.notifications, *n)
	return nil
}

func (r *repo) notificationIndex(id uuid.UUID) int {
	for i := range r.st.notifications {
		if r.st.notifications[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *repo) GetNotification(_ context.Context, id uuid.UUID) (*entity.Notification, error) {
	i := r.notificationIndex(id)
	if i < 0 {
		return nil, entity.NotFoundf("notification %s", id)
	}
	n := r.st.notifications[i]
	return &n, nil
}

func (r *repo) ListNotifications(_ context.Context, userID uuid.UUID, filter entity.NotificationFilter) ([]entity.Notification, error) {
	out := make([]entity.Notification, 0)
	for i := range r.st.notifications {
		n := &r.st.notifications[i]
		if n.UserID == userID && filter.Match(n) {
			out = append(out, *n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *repo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for i := range r.st.notifications {
		if r.st.notifications[i].UserID == userID && !r.st.notifications[i].IsRead {
			count++
		}
	}
	return count, nil
}

func (r *repo) MarkNotificationRead(_ context.Context, id uuid.UUID, at time.Time) (*entity.Notification, error) {
	i := r.notificationIndex(id)
	if i < 0 {
		return nil, entity.NotFoundf("notification %s", id)
	}
	r.st.notifications[i].MarkAsRead(at)
	n := r.st.notifications[i]
	return &n, nil
}

func (r *repo) MarkAllNotificationsRead(_ context.Context, userID uuid.UUID, at time.Time) (int, error) {
	count := 0
	for i := range r.st.notifications {
		n := &r.st.notifications[i]
		if n.UserID == userID && !n.IsRead {
			n.MarkAsRead(at)
			count++
		}
	}
	return count, nil
}

func (r *repo) DeleteNotification(_ context.Context, id uuid.UUID) error {
	i := r.notificationIndex(id)
	if i < 0 {
		return entity.NotFoundf("notification %s", id)
	}
	r.st.notifications = append(r.st.notifications[:i], r.st.notifications[i+1:]...)
	return nil
}
