package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind is an open tag; the engine itself emits the constants below.
type NotificationKind string

const (
	KindPriceDrop NotificationKind = "price_drop"
	KindCoupon    NotificationKind = "coupon"
)

// Notification - уведомление пользователя
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	ItemID    uuid.UUID        `json:"item_id" db:"item_id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty" db:"read_at"`
}

// NewNotification - создать непрочитанное уведомление
func NewNotification(userID, itemID uuid.UUID, kind NotificationKind, message string, now time.Time) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		ItemID:    itemID,
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
	}
}

// MarkAsRead - пометить как прочитанное; повторный вызов ничего не меняет
func (n *Notification) MarkAsRead(now time.Time) {
	if !n.IsRead {
		n.IsRead = true
		n.ReadAt = &now
	}
}

// NotificationFilter - фильтр списка уведомлений
type NotificationFilter struct {
	UnreadOnly bool
	Kind       NotificationKind
}

func (f NotificationFilter) Match(n *Notification) bool {
	if f.UnreadOnly && n.IsRead {
		return false
	}
	if f.Kind != "" && n.Kind != f.Kind {
		return false
	}
	return true
}

// NotificationView is a notification enriched with item details when the item still exists.
type NotificationView struct {
	Notification
	ItemName  string `json:"item_name,omitempty"`
	ItemImage string `json:"item_image,omitempty"`
}

// NotificationListResponse - ответ со списком уведомлений
type NotificationListResponse struct {
	Notifications []NotificationView `json:"notifications"`
	Total         int                `json:"total"`
	UnreadCount   int                `json:"unread_count"`
}
