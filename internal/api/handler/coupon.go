package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kedr891/wishlist-tracker/internal/coupon"
	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
)

type CouponService interface {
	Create(ctx context.Context, itemID uuid.UUID, in coupon.CreateInput) (*entity.CouponCreated, error)
	Simulate(ctx context.Context, itemID uuid.UUID, code string, discount *decimal.Decimal) (*entity.CouponCreated, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Coupon, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, activeOnly bool) ([]entity.Coupon, error)
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]entity.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, patch entity.CouponPatch) (*entity.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CouponHandler struct {
	service CouponService
	log     domain.Logger
	v       *validator.Validate
}

func NewCouponHandler(service CouponService, log domain.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		log:     log,
		v:       newValidator(),
	}
}

type createCouponRequest struct {
	Code           string               `json:"code" validate:"required,max=64"`
	Description    string               `json:"description" validate:"max=500"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	IsPercentage   bool                 `json:"is_percentage"`
	Status         *entity.CouponStatus `json:"status"`
	ValidFrom      *time.Time           `json:"valid_from"`
	ValidUntil     *time.Time           `json:"valid_until"`
}

type simulateCouponRequest struct {
	Code           string           `json:"code" validate:"max=64"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
}

type updateCouponRequest struct {
	Code           *string              `json:"code" validate:"omitempty,max=64"`
	Description    *string              `json:"description" validate:"omitempty,max=500"`
	DiscountAmount *decimal.Decimal     `json:"discount_amount"`
	IsPercentage   *bool                `json:"is_percentage"`
	Status         *entity.CouponStatus `json:"status"`
	ValidUntil     *time.Time           `json:"valid_until"`
}

// CreateCoupon - создать купон и уведомить владельца
// @Summary Create coupon
// @Tags coupons
// @Param item_id path string true "Item ID"
// @Param request body createCouponRequest true "Coupon"
// @Success 201 {object} entity.CouponCreated
// @Router /api/v1/items/{item_id}/coupons [post]
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		badRequest(c, err)
		return
	}

	in := coupon.CreateInput{
		Code:           req.Code,
		Description:    req.Description,
		DiscountAmount: req.DiscountAmount,
		IsPercentage:   req.IsPercentage,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	created, err := h.service.Create(c.Request.Context(), itemID, in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// SimulateCoupon - создать демонстрационный купон
// @Summary Simulate coupon
// @Tags coupons
// @Param item_id path string true "Item ID"
// @Param request body simulateCouponRequest false "Optional code and discount"
// @Success 201 {object} entity.CouponCreated
// @Router /api/v1/items/{item_id}/coupons/simulate [post]
func (h *CouponHandler) SimulateCoupon(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req simulateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.service.Simulate(c.Request.Context(), itemID, req.Code, req.DiscountAmount)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListItemCoupons - купоны позиции
// @Summary List item coupons
// @Tags coupons
// @Param item_id path string true "Item ID"
// @Param active_only query bool false "Only currently usable"
// @Success 200 {array} entity.Coupon
// @Router /api/v1/items/{item_id}/coupons [get]
func (h *CouponHandler) ListItemCoupons(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	activeOnly, err := queryFlag(c, "active_only")
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	coupons, err := h.service.ListByItem(c.Request.Context(), itemID, activeOnly)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, coupons)
}

// ListUserCoupons - купоны по всем позициям пользователя
// @Summary List user coupons
// @Tags coupons
// @Param user_id path string true "User ID"
// @Param active_only query bool false "Only currently usable"
// @Success 200 {array} entity.Coupon
// @Router /api/v1/users/{user_id}/coupons [get]
func (h *CouponHandler) ListUserCoupons(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	activeOnly, err := queryFlag(c, "active_only")
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	coupons, err := h.service.ListByUser(c.Request.Context(), userID, activeOnly)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, coupons)
}

// GetCoupon
// @Summary Get coupon
// @Tags coupons
// @Param coupon_id path string true "Coupon ID"
// @Success 200 {object} entity.Coupon
// @Router /api/v1/coupons/{coupon_id} [get]
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	id, ok := pathID(c, "coupon_id")
	if !ok {
		return
	}

	cp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, cp)
}

// UpdateCoupon
// @Summary Update coupon
// @Tags coupons
// @Param coupon_id path string true "Coupon ID"
// @Param request body updateCouponRequest true "Fields to change"
// @Success 200 {object} entity.Coupon
// @Router /api/v1/coupons/{coupon_id} [patch]
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id, ok := pathID(c, "coupon_id")
	if !ok {
		return
	}

	var req updateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		badRequest(c, err)
		return
	}

	cp, err := h.service.Update(c.Request.Context(), id, entity.CouponPatch{
		Code:           req.Code,
		Description:    req.Description,
		DiscountAmount: req.DiscountAmount,
		IsPercentage:   req.IsPercentage,
		Status:         req.Status,
		ValidUntil:     req.ValidUntil,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, cp)
}

// DeleteCoupon
// @Summary Delete coupon
// @Tags coupons
// @Param coupon_id path string true "Coupon ID"
// @Success 204
// @Router /api/v1/coupons/{coupon_id} [delete]
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, ok := pathID(c, "coupon_id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
