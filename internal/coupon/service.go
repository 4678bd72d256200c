// Package coupon manages item coupons. Creating a coupon always notifies the
// item's owner.
package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
	"github.com/kedr891/wishlist-tracker/internal/notification"
)

var _defaultDiscount = decimal.NewFromInt(15)

type NotificationSink interface {
	Notify(ctx context.Context, w notification.Writer, userID, itemID uuid.UUID, kind entity.NotificationKind, message string) (*entity.Notification, error)
	Announce(ctx context.Context, notifications ...*entity.Notification)
}

// CreateInput - поля нового купона. Zero Status means active, nil ValidFrom means now.
type CreateInput struct {
	Code           string
	Description    string
	DiscountAmount decimal.Decimal
	IsPercentage   bool
	Status         entity.CouponStatus
	ValidFrom      *time.Time
	ValidUntil     *time.Time
}

type Service struct {
	store domain.Store
	sink  NotificationSink
	log   domain.Logger
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store domain.Store, sink NotificationSink, log domain.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		sink:  sink,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create stores the coupon and a coupon notification in one transaction.
func (s *Service) Create(ctx context.Context, itemID uuid.UUID, in CreateInput) (*entity.CouponCreated, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, entity.Invalidf("coupon code is required")
	}
	if in.DiscountAmount.IsNegative() {
		return nil, entity.Invalidf("discount must be non-negative, got %s", in.DiscountAmount)
	}

	now := s.now()
	c := entity.NewCoupon(itemID, code, now)
	c.Description = in.Description
	c.DiscountAmount = in.DiscountAmount
	c.IsPercentage = in.IsPercentage
	c.Status = in.Status
	if in.ValidFrom != nil {
		from := *in.ValidFrom
		c.ValidFrom = &from
	}
	if in.ValidUntil != nil {
		until := *in.ValidUntil
		c.ValidUntil = &until
	}
	if c.ValidUntil != nil && c.ValidUntil.Before(*c.ValidFrom) {
		return nil, entity.Invalidf("valid_until is before valid_from")
	}

	var created *entity.CouponCreated
	err := s.store.InTx(ctx, func(repo domain.Repository) error {
		item, err := repo.GetItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}

		if err := repo.CreateCoupon(ctx, c); err != nil {
			return fmt.Errorf("create coupon: %w", err)
		}

		n, err := s.sink.Notify(ctx, repo, item.UserID, item.ID, entity.KindCoupon, Message(item.Name, c.Code))
		if err != nil {
			return err
		}

		created = &entity.CouponCreated{Coupon: c, Notification: n}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sink.Announce(ctx, created.Notification)
	s.log.Info("Coupon created", "coupon_id", c.ID, "item_id", itemID, "code", c.Code)

	return created, nil
}

// Simulate creates a demo coupon. Empty code and nil discount fall back to
// SAVE<item id prefix><MMDD> and 15 percent.
func (s *Service) Simulate(ctx context.Context, itemID uuid.UUID, code string, discount *decimal.Decimal) (*entity.CouponCreated, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if strings.TrimSpace(code) == "" {
		code = fmt.Sprintf("SAVE%s%s", item.ID.String()[:8], s.now().Format("0102"))
	}
	amount := _defaultDiscount
	if discount != nil {
		amount = *discount
	}

	return s.Create(ctx, itemID, CreateInput{
		Code:           strings.ToUpper(code),
		Description:    fmt.Sprintf("Save %s%% on %s", amount.String(), item.Name),
		DiscountAmount: amount,
		IsPercentage:   true,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Coupon, error) {
	c, err := s.store.GetCoupon(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return c, nil
}

func (s *Service) ListByItem(ctx context.Context, itemID uuid.UUID, activeOnly bool) ([]entity.Coupon, error) {
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	coupons, err := s.store.ListCouponsByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	return s.filter(coupons, activeOnly), nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]entity.Coupon, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	coupons, err := s.store.ListCouponsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	return s.filter(coupons, activeOnly), nil
}

func (s *Service) filter(coupons []entity.Coupon, activeOnly bool) []entity.Coupon {
	if !activeOnly {
		return coupons
	}

	now := s.now()
	active := make([]entity.Coupon, 0, len(coupons))
	for i := range coupons {
		if coupons[i].IsActive(now) {
			active = append(active, coupons[i])
		}
	}
	return active
}

// Update edits a coupon. It never creates a notification.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch entity.CouponPatch) (*entity.Coupon, error) {
	if patch.Code != nil && strings.TrimSpace(*patch.Code) == "" {
		return nil, entity.Invalidf("coupon code must not be empty")
	}
	if patch.DiscountAmount != nil && patch.DiscountAmount.IsNegative() {
		return nil, entity.Invalidf("discount must be non-negative, got %s", patch.DiscountAmount)
	}

	var updated *entity.Coupon
	err := s.store.InTx(ctx, func(repo domain.Repository) error {
		c, err := repo.GetCoupon(ctx, id)
		if err != nil {
			return fmt.Errorf("get coupon: %w", err)
		}

		patch.Apply(c)
		if c.ValidUntil != nil && c.ValidFrom != nil && c.ValidUntil.Before(*c.ValidFrom) {
			return entity.Invalidf("valid_until is before valid_from")
		}

		if err := repo.UpdateCoupon(ctx, c); err != nil {
			return fmt.Errorf("update coupon: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteCoupon(ctx, id); err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	return nil
}

// Message renders the coupon notification text.
func Message(itemName, code string) string {
	return fmt.Sprintf("New coupon available for %s: %s", itemName, code)
}
