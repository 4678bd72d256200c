// Package wishlist is the CRUD layer for users and their items.
package wishlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
	"github.com/kedr891/wishlist-tracker/internal/price"
	"github.com/kedr891/wishlist-tracker/internal/pricing"
)

// PriceService is the part of price.Service item CRUD depends on.
type PriceService interface {
	UpdatePriceWith(ctx context.Context, itemID uuid.UUID, price decimal.NullDecimal, edit price.ItemEdit) (*entity.PriceUpdate, error)
	History(ctx context.Context, itemID uuid.UUID) ([]entity.PriceObservation, error)
	Invalidate(ctx context.Context, itemID uuid.UUID)
}

type CreateItemInput struct {
	Name        string
	Description string
	URL         string
	ImageURL    string
	Category    string
	Priority    *entity.Priority
	Price       decimal.NullDecimal
}

// UpdateItemInput - Price, when set, goes through the price updater.
type UpdateItemInput struct {
	Patch entity.ItemPatch
	Price decimal.NullDecimal
}

type Service struct {
	store  domain.Store
	prices PriceService
	log    domain.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store domain.Store, prices PriceService, log domain.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		prices: prices,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) CreateUser(ctx context.Context, username, email string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, entity.Invalidf("username and email are required")
	}

	user := entity.NewUser(username, email)
	user.CreatedAt = s.now()
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("User created", "user_id", user.ID, "username", user.Username)

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateItem adds an item to the user's wishlist. A supplied price becomes the
// initial, lowest, highest and current price and the first history entry.
func (s *Service) CreateItem(ctx context.Context, userID uuid.UUID, in CreateItemInput) (*entity.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, entity.Invalidf("item name is required")
	}

	var initial *decimal.Decimal
	if in.Price.Valid {
		p, err := pricing.ValidatePrice(in.Price)
		if err != nil {
			return nil, err
		}
		initial = &p
	}

	now := s.now()
	item := entity.NewItem(userID, name)
	item.Description = in.Description
	item.URL = in.URL
	item.ImageURL = in.ImageURL
	item.Category = in.Category
	item.CreatedAt = now
	item.UpdatedAt = now
	if in.Priority != nil {
		item.Priority = *in.Priority
	}

	err := s.store.InTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUser(ctx, userID); err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		var obs *entity.PriceObservation
		if initial != nil {
			obs = pricing.Open(item, *initial, now)
		}

		if err := repo.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		if obs == nil {
			return nil
		}
		if err := repo.AppendObservation(ctx, obs); err != nil {
			return fmt.Errorf("append observation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Item created", "item_id", item.ID, "user_id", userID, "priced", initial != nil)

	return item, nil
}

// GetItem returns the item with its price history, newest first.
func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*entity.ItemDetail, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	history, err := s.prices.History(ctx, id)
	if err != nil {
		return nil, err
	}

	return &entity.ItemDetail{Item: *item, PriceHistory: history}, nil
}

func (s *Service) ListItems(ctx context.Context, userID uuid.UUID, filter entity.ItemFilter) ([]entity.Item, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	items, err := s.store.ListItems(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}

// UpdateItem applies non-price edits. A supplied price goes through the price
// updater in the same transaction, so drops are detected the usual way and a
// failed price step leaves the item untouched.
func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, in UpdateItemInput) (*entity.Item, error) {
	if in.Patch.Name != nil && strings.TrimSpace(*in.Patch.Name) == "" {
		return nil, entity.Invalidf("item name must not be empty")
	}

	edit := func(repo domain.Repository, item *entity.Item) error {
		in.Patch.Apply(item)
		item.UpdatedAt = s.now()

		if err := repo.UpdateItem(ctx, item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		return nil
	}

	if in.Price.Valid {
		update, err := s.prices.UpdatePriceWith(ctx, id, in.Price, edit)
		if err != nil {
			return nil, err
		}
		return update.Item, nil
	}

	var item *entity.Item
	err := s.store.InTx(ctx, func(repo domain.Repository) error {
		var err error
		item, err = repo.GetItemForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		return edit(repo, item)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// DeleteItem removes the item with its history and coupons. Its notifications stay.
func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.prices.Invalidate(ctx, id)
	s.log.Info("Item deleted", "item_id", id)

	return nil
}
