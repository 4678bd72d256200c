package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
)

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, filter entity.NotificationFilter) (*entity.NotificationListResponse, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type NotificationHandler struct {
	service NotificationService
	log     domain.Logger
}

func NewNotificationHandler(service NotificationService, log domain.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log,
	}
}

// ListNotifications - уведомления пользователя, новые сверху
// @Summary List notifications
// @Tags notifications
// @Param user_id path string true "User ID"
// @Param unread_only query bool false "Only unread"
// @Param kind query string false "price_drop or coupon"
// @Success 200 {object} entity.NotificationListResponse
// @Router /api/v1/users/{user_id}/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	unreadOnly, err := queryFlag(c, "unread_only")
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	resp, err := h.service.List(c.Request.Context(), userID, entity.NotificationFilter{
		UnreadOnly: unreadOnly,
		Kind:       entity.NotificationKind(c.Query("kind")),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MarkRead - пометить уведомление прочитанным
// @Summary Mark notification read
// @Tags notifications
// @Param notification_id path string true "Notification ID"
// @Success 200 {object} entity.Notification
// @Router /api/v1/notifications/{notification_id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "notification_id")
	if !ok {
		return
	}

	n, err := h.service.MarkRead(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, n)
}

// MarkAllRead - пометить все уведомления пользователя прочитанными
// @Summary Mark all notifications read
// @Tags notifications
// @Param user_id path string true "User ID"
// @Success 200 {object} map[string]int
// @Router /api/v1/users/{user_id}/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	count, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": count})
}

// DeleteNotification
// @Summary Delete notification
// @Tags notifications
// @Param notification_id path string true "Notification ID"
// @Success 204
// @Router /api/v1/notifications/{notification_id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, ok := pathID(c, "notification_id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
