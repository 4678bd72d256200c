package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponStatus is the closed set of coupon states.
type CouponStatus uint8

const (
	CouponActive CouponStatus = iota
	CouponExpired
	CouponUsed
)

var couponStatusNames = [...]string{
	CouponActive:  "active",
	CouponExpired: "expired",
	CouponUsed:    "used",
}

func (s CouponStatus) String() string {
	if int(s) < len(couponStatusNames) {
		return couponStatusNames[s]
	}
	return fmt.Sprintf("CouponStatus(%d)", s)
}

func ParseCouponStatus(s string) (CouponStatus, error) {
	for i, name := range couponStatusNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return CouponStatus(i), nil
		}
	}
	return 0, Invalidf("unknown coupon status %q", s)
}

func (s CouponStatus) MarshalText() ([]byte, error) {
	if int(s) >= len(couponStatusNames) {
		return nil, Invalidf("unknown coupon status %d", s)
	}
	return []byte(couponStatusNames[s]), nil
}

func (s *CouponStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseCouponStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Coupon - купон на позицию вишлиста
type Coupon struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	ItemID         uuid.UUID       `json:"item_id" db:"item_id"`
	Code           string          `json:"code" db:"code"`
	Description    string          `json:"description" db:"description"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	IsPercentage   bool            `json:"is_percentage" db:"is_percentage"`
	Status         CouponStatus    `json:"status" db:"status"`
	ValidFrom      *time.Time      `json:"valid_from,omitempty" db:"valid_from"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty" db:"valid_until"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

func NewCoupon(itemID uuid.UUID, code string, now time.Time) *Coupon {
	from := now
	return &Coupon{
		ID:        uuid.New(),
		ItemID:    itemID,
		Code:      code,
		Status:    CouponActive,
		ValidFrom: &from,
		CreatedAt: now,
	}
}

// IsActive reports whether the coupon can be used at now.
func (c *Coupon) IsActive(now time.Time) bool {
	if c.Status != CouponActive {
		return false
	}
	if c.ValidFrom != nil && c.ValidFrom.After(now) {
		return false
	}
	if c.ValidUntil != nil && c.ValidUntil.Before(now) {
		return false
	}
	return true
}

// CouponPatch - изменяемые поля купона
type CouponPatch struct {
	Code           *string
	Description    *string
	DiscountAmount *decimal.Decimal
	IsPercentage   *bool
	Status         *CouponStatus
	ValidUntil     *time.Time
}

func (p CouponPatch) Apply(c *Coupon) {
	if p.Code != nil {
		c.Code = *p.Code
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.DiscountAmount != nil {
		c.DiscountAmount = *p.DiscountAmount
	}
	if p.IsPercentage != nil {
		c.IsPercentage = *p.IsPercentage
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.ValidUntil != nil {
		until := *p.ValidUntil
		c.ValidUntil = &until
	}
}

// CouponCreated is returned by coupon creation together with its notification.
type CouponCreated struct {
	Coupon       *Coupon       `json:"coupon"`
	Notification *Notification `json:"notification"`
}
