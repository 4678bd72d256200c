package pgstorage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

var notificationColumns = []string{
	"id", "user_id", "item_id", "kind", "message", "is_read", "created_at", "read_at",
}

func scanNotification(row rowScanner) (*entity.Notification, error) {
	var (
		n    entity.Notification
		kind string
	)

	if err := row.Scan(&n.ID, &n.UserID, &n.ItemID, &kind, &n.Message, &n.IsRead, &n.CreatedAt, &n.ReadAt); err != nil {
		return nil, err
	}
	n.Kind = entity.NotificationKind(kind)

	return &n, nil
}

func (s *Storage) CreateNotification(ctx context.Context, n *entity.Notification) error {
	qb := s.builder.
		Insert(notificationsTable).
		Columns(notificationColumns...).
		Values(n.ID, n.UserID, n.ItemID, string(n.Kind), n.Message, n.IsRead, n.CreatedAt, n.ReadAt)

	if _, err := s.exec(ctx, qb); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (s *Storage) GetNotification(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	row, err := s.queryRow(ctx, s.builder.
		Select(notificationColumns...).
		From(notificationsTable).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	n, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("get notification %s: %w", id, classify(err))
	}

	return n, nil
}

func (s *Storage) ListNotifications(ctx context.Context, userID uuid.UUID, filter entity.NotificationFilter) ([]entity.Notification, error) {
	rows, err := s.query(ctx, listNotificationsQuery(s.builder, userID, filter))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]entity.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", classify(err))
		}
		notifications = append(notifications, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", classify(err))
	}

	return notifications, nil
}

// Newest first; rows sharing a timestamp keep insertion order.
func listNotificationsQuery(b squirrel.StatementBuilderType, userID uuid.UUID, filter entity.NotificationFilter) squirrel.SelectBuilder {
	qb := b.Select(notificationColumns...).
		From(notificationsTable).
		Where(squirrel.Eq{"user_id": userID})

	if filter.UnreadOnly {
		qb = qb.Where(squirrel.Eq{"is_read": false})
	}
	if filter.Kind != "" {
		qb = qb.Where(squirrel.Eq{"kind": string(filter.Kind)})
	}

	return qb.OrderBy("created_at DESC", "seq ASC")
}

func (s *Storage) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	row, err := s.queryRow(ctx, s.builder.
		Select("COUNT(*)").
		From(notificationsTable).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}))
	if err != nil {
		return 0, err
	}

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", classify(err))
	}

	return count, nil
}

// MarkNotificationRead keeps the first read_at on repeated calls.
func (s *Storage) MarkNotificationRead(ctx context.Context, id uuid.UUID, at time.Time) (*entity.Notification, error) {
	row, err := s.queryRow(ctx, s.builder.
		Update(notificationsTable).
		Set("is_read", true).
		Set("read_at", squirrel.Expr("COALESCE(read_at, ?)", at)).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING "+strings.Join(notificationColumns, ", ")))
	if err != nil {
		return nil, err
	}

	n, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("mark notification %s read: %w", id, classify(err))
	}

	return n, nil
}

// MarkAllNotificationsRead is a single statement, so it sees the unread set as of its own snapshot.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID, at time.Time) (int, error) {
	tag, err := s.exec(ctx, s.builder.
		Update(notificationsTable).
		Set("is_read", true).
		Set("read_at", at).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}))
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (s *Storage) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	tag, err := s.exec(ctx, s.builder.Delete(notificationsTable).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	return expectAffected(tag, "notification "+id.String())
}
