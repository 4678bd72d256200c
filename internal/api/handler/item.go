package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
	"github.com/kedr891/wishlist-tracker/internal/wishlist"
)

type ItemService interface {
	CreateItem(ctx context.Context, userID uuid.UUID, in wishlist.CreateItemInput) (*entity.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*entity.ItemDetail, error)
	ListItems(ctx context.Context, userID uuid.UUID, filter entity.ItemFilter) ([]entity.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, in wishlist.UpdateItemInput) (*entity.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type ItemHandler struct {
	service ItemService
	log     domain.Logger
	v       *validator.Validate
}

func NewItemHandler(service ItemService, log domain.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		log:     log,
		v:       newValidator(),
	}
}

type createItemRequest struct {
	Name        string              `json:"name" validate:"required,max=255"`
	Description string              `json:"description"`
	URL         string              `json:"url" validate:"omitempty,url"`
	ImageURL    string              `json:"image_url" validate:"omitempty,url"`
	Category    string              `json:"category" validate:"max=100"`
	Priority    *entity.Priority    `json:"priority"`
	Price       decimal.NullDecimal `json:"price"`
}

type updateItemRequest struct {
	Name        *string             `json:"name" validate:"omitempty,max=255"`
	Description *string             `json:"description"`
	URL         *string             `json:"url" validate:"omitempty,url"`
	ImageURL    *string             `json:"image_url" validate:"omitempty,url"`
	Category    *string             `json:"category" validate:"omitempty,max=100"`
	IsPurchased *bool               `json:"is_purchased"`
	Priority    *entity.Priority    `json:"priority"`
	Price       decimal.NullDecimal `json:"price"`
}

// CreateItem - добавить позицию в вишлист
// @Summary Create wishlist item
// @Tags items
// @Param user_id path string true "User ID"
// @Param request body createItemRequest true "Item"
// @Success 201 {object} entity.Item
// @Router /api/v1/users/{user_id}/items [post]
func (h *ItemHandler) CreateItem(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), userID, wishlist.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Priority:    req.Priority,
		Price:       req.Price,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ListItems - позиции пользователя
// @Summary List wishlist items
// @Tags items
// @Param user_id path string true "User ID"
// @Param category query string false "Category"
// @Param priority query string false "low, medium, high"
// @Param is_purchased query bool false "Purchased flag"
// @Success 200 {array} entity.Item
// @Router /api/v1/users/{user_id}/items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	var filter entity.ItemFilter
	if category, ok := c.GetQuery("category"); ok {
		filter.Category = &category
	}
	if raw := c.Query("priority"); raw != "" {
		priority, err := entity.ParsePriority(raw)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		filter.Priority = &priority
	}
	purchased, err := queryBool(c, "is_purchased")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	filter.IsPurchased = purchased

	items, err := h.service.ListItems(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetItem - позиция с историей цены
// @Summary Get item with price history
// @Tags items
// @Param item_id path string true "Item ID"
// @Success 200 {object} entity.ItemDetail
// @Router /api/v1/items/{item_id} [get]
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	detail, err := h.service.GetItem(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateItem - изменить позицию
// @Summary Update item
// @Tags items
// @Param item_id path string true "Item ID"
// @Param request body updateItemRequest true "Fields to change"
// @Success 200 {object} entity.Item
// @Router /api/v1/items/{item_id} [patch]
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), id, wishlist.UpdateItemInput{
		Patch: entity.ItemPatch{
			Name:        req.Name,
			Description: req.Description,
			URL:         req.URL,
			ImageURL:    req.ImageURL,
			Category:    req.Category,
			IsPurchased: req.IsPurchased,
			Priority:    req.Priority,
		},
		Price: req.Price,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem - удалить позицию
// @Summary Delete item
// @Tags items
// @Param item_id path string true "Item ID"
// @Success 204
// @Router /api/v1/items/{item_id} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
