package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
	"github.com/kedr891/wishlist-tracker/internal/metrics"
)

//go:generate go tool mockgen -source=service.go -destination=mocks/publisher.go -package=mocks Publisher

// Publisher pushes committed notifications to an outside broker.
type Publisher interface {
	Publish(ctx context.Context, n *entity.Notification) error
}

// Writer is the part of a (usually transactional) repository Notify needs.
type Writer interface {
	CreateNotification(ctx context.Context, n *entity.Notification) error
}

// Service owns notification records: creation, read state and listing.
type Service struct {
	store     domain.Store
	publisher Publisher
	log       domain.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for created_at and read_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService - publisher may be nil when no broker is configured.
func NewService(store domain.Store, publisher Publisher, log domain.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Notify creates an unread notification through w. Every call creates exactly
// one record; there is no deduplication.
func (s *Service) Notify(
	ctx context.Context,
	w Writer,
	userID, itemID uuid.UUID,
	kind entity.NotificationKind,
	message string,
) (*entity.Notification, error) {
	n := entity.NewNotification(userID, itemID, kind, message, s.now())

	if err := w.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	return n, nil
}

// Announce is called after the creating transaction committed. Broker
// failures are logged and never reach the caller.
func (s *Service) Announce(ctx context.Context, notifications ...*entity.Notification) {
	for _, n := range notifications {
		if n == nil {
			continue
		}

		metrics.RecordNotificationCreated(string(n.Kind))
		s.log.Info("Notification created",
			"id", n.ID,
			"user_id", n.UserID,
			"item_id", n.ItemID,
			"kind", n.Kind,
		)

		if s.publisher == nil {
			continue
		}

		err := s.publisher.Publish(ctx, n)
		metrics.RecordNotificationPublished(err == nil)
		if err != nil {
			s.log.Warn("Failed to publish notification", "id", n.ID, "error", err)
		}
	}
}

// List returns the user's notifications newest first, enriched with item
// name and image when the item still exists.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter entity.NotificationFilter) (*entity.NotificationListResponse, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	notifications, err := s.store.ListNotifications(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make(map[uuid.UUID]*entity.Item)
	views := make([]entity.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		item, seen := items[n.ItemID]
		if !seen {
			item, err = s.store.GetItem(ctx, n.ItemID)
			if err != nil {
				if !errors.Is(err, entity.ErrNotFound) {
					return nil, fmt.Errorf("get item: %w", err)
				}
				item = nil
			}
			items[n.ItemID] = item
		}

		view := entity.NotificationView{Notification: n}
		if item != nil {
			view.ItemName = item.Name
			view.ItemImage = item.ImageURL
		}
		views = append(views, view)
	}

	return &entity.NotificationListResponse{
		Notifications: views,
		Total:         len(views),
		UnreadCount:   unread,
	}, nil
}

// MarkRead is idempotent; read_at keeps its first value.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	n, err := s.store.MarkNotificationRead(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}

	return n, nil
}

// MarkAllRead marks the user's currently unread notifications and returns how
// many changed. Notifications created while it runs may or may not be included.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.store.MarkAllNotificationsRead(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	s.log.Debug("Notifications marked read", "user_id", userID, "count", count)

	return count, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}

	return count, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteNotification(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	return nil
}
