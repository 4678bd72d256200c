package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Priority is the closed set of wishlist priorities.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

var priorityNames = [...]string{
	PriorityLow:    "low",
	PriorityMedium: "medium",
	PriorityHigh:   "high",
}

func (p Priority) String() string {
	if int(p) < len(priorityNames) {
		return priorityNames[p]
	}
	return fmt.Sprintf("Priority(%d)", p)
}

// ParsePriority accepts "low", "medium" or "high" in any case.
func ParsePriority(s string) (Priority, error) {
	for i, name := range priorityNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Priority(i), nil
		}
	}
	return 0, Invalidf("unknown priority %q", s)
}

func (p Priority) MarshalText() ([]byte, error) {
	if int(p) >= len(priorityNames) {
		return nil, Invalidf("unknown priority %d", p)
	}
	return []byte(priorityNames[p]), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Item - позиция вишлиста с отслеживаемой ценой.
// Price-derived fields are only changed through the pricing ledger.
type Item struct {
	ID           uuid.UUID           `json:"id" db:"id"`
	UserID       uuid.UUID           `json:"user_id" db:"user_id"`
	Name         string              `json:"name" db:"name"`
	Description  string              `json:"description" db:"description"`
	URL          string              `json:"url" db:"url"`
	ImageURL     string              `json:"image_url" db:"image_url"`
	Category     string              `json:"category" db:"category"`
	CurrentPrice decimal.NullDecimal `json:"current_price" db:"current_price"`
	InitialPrice decimal.NullDecimal `json:"initial_price" db:"initial_price"`
	LowestPrice  decimal.NullDecimal `json:"lowest_price" db:"lowest_price"`
	HighestPrice decimal.NullDecimal `json:"highest_price" db:"highest_price"`
	IsPurchased  bool                `json:"is_purchased" db:"is_purchased"`
	Priority     Priority            `json:"priority" db:"priority"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
}

// NewItem - создать позицию без цены
func NewItem(userID uuid.UUID, name string) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Priority:  PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ItemFilter narrows a user's item listing. Nil fields are not applied.
type ItemFilter struct {
	Category    *string
	Priority    *Priority
	IsPurchased *bool
}

// Match reports whether item passes every set field of f.
func (f ItemFilter) Match(item *Item) bool {
	if f.Category != nil && item.Category != *f.Category {
		return false
	}
	if f.Priority != nil && item.Priority != *f.Priority {
		return false
	}
	if f.IsPurchased != nil && item.IsPurchased != *f.IsPurchased {
		return false
	}
	return true
}

// ItemPatch carries the non-price fields an owner may edit.
type ItemPatch struct {
	Name        *string
	Description *string
	URL         *string
	ImageURL    *string
	Category    *string
	IsPurchased *bool
	Priority    *Priority
}

// Apply copies the set fields of p onto item.
func (p ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.URL != nil {
		item.URL = *p.URL
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.IsPurchased != nil {
		item.IsPurchased = *p.IsPurchased
	}
	if p.Priority != nil {
		item.Priority = *p.Priority
	}
}
