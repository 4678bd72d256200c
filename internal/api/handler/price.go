package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
)

type PriceService interface {
	UpdatePrice(ctx context.Context, itemID uuid.UUID, price decimal.NullDecimal) (*entity.PriceUpdate, error)
	SimulateDrop(ctx context.Context, itemID uuid.UUID, percentage decimal.Decimal) (*entity.PriceUpdate, error)
	History(ctx context.Context, itemID uuid.UUID) ([]entity.PriceObservation, error)
	Drops(ctx context.Context, userID uuid.UUID) ([]entity.PriceDrop, error)
}

type PriceHandler struct {
	service PriceService
	log     domain.Logger
}

func NewPriceHandler(service PriceService, log domain.Logger) *PriceHandler {
	return &PriceHandler{
		service: service,
		log:     log,
	}
}

type updatePriceRequest struct {
	Price decimal.NullDecimal `json:"price"`
}

var defaultDropPercentage = decimal.NewFromInt(10)

type simulateDropRequest struct {
	Percentage decimal.NullDecimal `json:"percentage"`
}

// UpdatePrice - записать наблюдаемую цену
// @Summary Update item price
// @Tags prices
// @Param item_id path string true "Item ID"
// @Param request body updatePriceRequest true "New price"
// @Success 200 {object} entity.PriceUpdate
// @Router /api/v1/prices/{item_id} [put]
func (h *PriceHandler) UpdatePrice(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	update, err := h.service.UpdatePrice(c.Request.Context(), itemID, req.Price)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, update)
}

// GetHistory - история цены, новые сверху
// @Summary Get price history
// @Tags prices
// @Param item_id path string true "Item ID"
// @Success 200 {array} entity.PriceObservation
// @Router /api/v1/prices/{item_id}/history [get]
func (h *PriceHandler) GetHistory(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	history, err := h.service.History(c.Request.Context(), itemID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// SimulateDrop - понизить цену на процент
// @Summary Simulate a price drop
// @Tags prices
// @Param item_id path string true "Item ID"
// @Param request body simulateDropRequest false "Percentage in (0, 100], 10 by default"
// @Success 200 {object} entity.PriceUpdate
// @Router /api/v1/prices/{item_id}/simulate-drop [post]
func (h *PriceHandler) SimulateDrop(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req simulateDropRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	percentage := defaultDropPercentage
	if req.Percentage.Valid {
		percentage = req.Percentage.Decimal
	}

	update, err := h.service.SimulateDrop(c.Request.Context(), itemID, percentage)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, update)
}

// GetPriceDrops - позиции пользователя, подешевевшие с момента добавления
// @Summary List price drops
// @Tags prices
// @Param user_id path string true "User ID"
// @Success 200 {array} entity.PriceDrop
// @Router /api/v1/users/{user_id}/price-drops [get]
func (h *PriceHandler) GetPriceDrops(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	drops, err := h.service.Drops(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, drops)
}
