// Package price updates item prices and answers price history queries.
package price

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
	"github.com/kedr891/wishlist-tracker/internal/metrics"
	"github.com/kedr891/wishlist-tracker/internal/notification"
	"github.com/kedr891/wishlist-tracker/internal/pricing"
	"github.com/kedr891/wishlist-tracker/pkg/redis"
)

const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

var hundred = decimal.NewFromInt(100)

// NotificationSink creates notifications inside a transaction and announces
// them after commit.
type NotificationSink interface {
	Notify(ctx context.Context, w notification.Writer, userID, itemID uuid.UUID, kind entity.NotificationKind, message string) (*entity.Notification, error)
	Announce(ctx context.Context, notifications ...*entity.Notification)
}

// Service - обновление цен и история
type Service struct {
	store domain.Store
	cache HistoryCache
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

// NewService - cache may be nil, history is then always read from the store.
func NewService(store domain.Store, cache HistoryCache, sink NotificationSink, log domain.Logger, opts ...Option) *Service {
	if cache == nil {
		cache = NopHistoryCache{}
	}

	s := &Service{
		store: store,
		cache: cache,
		sink:  sink,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ItemEdit changes the locked item before its price is recorded, in the same
// transaction. It must persist its own changes through repo.
type ItemEdit func(repo domain.Repository, item *entity.Item) error

// UpdatePrice records an observed price for the item in one transaction.
// An unchanged price returns the item with nil Observation and Notification.
// A drop against the previous current price creates a price_drop notification.
func (s *Service) UpdatePrice(ctx context.Context, itemID uuid.UUID, price decimal.NullDecimal) (*entity.PriceUpdate, error) {
	return s.update(ctx, itemID, price, time.Time{}, nil)
}

// UpdatePriceWith runs edit on the locked item and then records price, so
// both commit or neither does.
func (s *Service) UpdatePriceWith(ctx context.Context, itemID uuid.UUID, price decimal.NullDecimal, edit ItemEdit) (*entity.PriceUpdate, error) {
	return s.update(ctx, itemID, price, time.Time{}, edit)
}

// RecordObserved is UpdatePrice for a price seen at observedAt. A zero
// observedAt means now, a future one is clamped to now. An observation older
// than the item's latest one is rejected as InvalidInput.
func (s *Service) RecordObserved(ctx context.Context, itemID uuid.UUID, price decimal.NullDecimal, observedAt time.Time) (*entity.PriceUpdate, error) {
	return s.update(ctx, itemID, price, observedAt, nil)
}

func (s *Service) update(ctx context.Context, itemID uuid.UUID, price decimal.NullDecimal, observedAt time.Time, edit ItemEdit) (*entity.PriceUpdate, error) {
	newPrice, err := pricing.ValidatePrice(price)
	if err != nil {
		metrics.RecordPriceUpdate(OutcomeFailed)
		return nil, err
	}

	var (
		update  *entity.PriceUpdate
		dropped bool
	)

	err = s.store.InTx(ctx, func(repo domain.Repository) error {
		item, err := repo.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}

		if edit != nil {
			if err := edit(repo, item); err != nil {
				return err
			}
		}

		now := s.now()
		at, err := s.observationTime(ctx, repo, itemID, observedAt, now)
		if err != nil {
			return err
		}

		outcome := pricing.Record(item, newPrice, at)
		update = &entity.PriceUpdate{Item: item}
		if !outcome.Changed {
			return nil
		}
		item.UpdatedAt = now

		if err := repo.AppendObservation(ctx, outcome.Observation); err != nil {
			return fmt.Errorf("append observation: %w", err)
		}
		if err := repo.UpdateItemPrices(ctx, item); err != nil {
			return fmt.Errorf("update item prices: %w", err)
		}
		update.Observation = outcome.Observation

		drop, ok := pricing.Detect(outcome.OldPrice, decimal.NewNullDecimal(outcome.NewPrice))
		if !ok {
			return nil
		}
		dropped = true

		n, err := s.sink.Notify(ctx, repo, item.UserID, item.ID, entity.KindPriceDrop, pricing.DropMessage(item.Name, drop))
		if err != nil {
			return err
		}
		update.Notification = n

		return nil
	})
	if err != nil {
		metrics.RecordPriceUpdate(OutcomeFailed)
		return nil, err
	}

	if !update.Changed() {
		metrics.RecordPriceUpdate(OutcomeUnchanged)
		s.log.Debug("Price unchanged", "item_id", itemID, "price", newPrice)
		return update, nil
	}

	metrics.RecordPriceUpdate(OutcomeChanged)
	s.invalidate(ctx, itemID)

	if dropped {
		metrics.RecordPriceDrop()
		s.sink.Announce(ctx, update.Notification)
	}

	s.log.Info("Price updated",
		"item_id", itemID,
		"price", newPrice,
		"drop", dropped,
	)

	return update, nil
}

func (s *Service) observationTime(ctx context.Context, repo domain.Repository, itemID uuid.UUID, observedAt, now time.Time) (time.Time, error) {
	if observedAt.IsZero() || observedAt.After(now) {
		return now, nil
	}

	history, err := repo.ListObservations(ctx, itemID)
	if err != nil {
		return time.Time{}, fmt.Errorf("list observations: %w", err)
	}
	if len(history) > 0 && observedAt.Before(history[0].RecordedAt) {
		return time.Time{}, entity.Invalidf("price observed at %s is older than the latest observation at %s",
			observedAt.Format(time.RFC3339), history[0].RecordedAt.Format(time.RFC3339))
	}

	return observedAt.UTC(), nil
}

// SimulateDrop lowers the current price by percentage (0 < percentage <= 100),
// rounded to cents, and applies it through UpdatePrice.
func (s *Service) SimulateDrop(ctx context.Context, itemID uuid.UUID, percentage decimal.Decimal) (*entity.PriceUpdate, error) {
	if !percentage.IsPositive() || percentage.GreaterThan(hundred) {
		return nil, entity.Invalidf("percentage must be in (0, 100], got %s", percentage)
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if !item.CurrentPrice.Valid {
		return nil, entity.Invalidf("item %s has no current price", itemID)
	}

	factor := hundred.Sub(percentage).Div(hundred)
	newPrice := item.CurrentPrice.Decimal.Mul(factor).Round(2)

	return s.UpdatePrice(ctx, itemID, decimal.NewNullDecimal(newPrice))
}

// History returns the item's observations newest first. Cached entries are
// keyed by the item's version, so an entry written from an older read is
// never served after the item changes.
func (s *Service) History(ctx context.Context, itemID uuid.UUID) ([]entity.PriceObservation, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	version := HistoryVersion(item)

	history, err := s.cache.Get(ctx, itemID, version)
	if err == nil {
		return history, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		s.log.Warn("Failed to read price history cache", "item_id", itemID, "error", err)
	}

	history, err = s.store.ListObservations(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}

	if err := s.cache.Set(ctx, itemID, version, history); err != nil {
		s.log.Warn("Failed to cache price history", "item_id", itemID, "error", err)
	}

	return history, nil
}

// Invalidate drops the cached history of a deleted or re-priced item.
func (s *Service) Invalidate(ctx context.Context, itemID uuid.UUID) {
	s.invalidate(ctx, itemID)
}

func (s *Service) invalidate(ctx context.Context, itemID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, itemID); err != nil {
		s.log.Warn("Failed to invalidate price history cache", "item_id", itemID, "error", err)
	}
}

// Drops lists the user's items priced below their initial price, biggest
// drop first. Percentages are rounded to two decimals.
func (s *Service) Drops(ctx context.Context, userID uuid.UUID) ([]entity.PriceDrop, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	items, err := s.store.ListItems(ctx, userID, entity.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	drops := make([]entity.PriceDrop, 0)
	for i := range items {
		drop, ok := pricing.DropSinceInitial(&items[i])
		if !ok {
			continue
		}
		drops = append(drops, entity.PriceDrop{
			Item:           items[i],
			DropPercentage: drop.Percentage.Round(2),
			HasPriceDrop:   true,
		})
	}

	slices.SortStableFunc(drops, func(a, b entity.PriceDrop) int {
		return b.DropPercentage.Cmp(a.DropPercentage)
	})

	return drops, nil
}
