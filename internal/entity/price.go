package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceObservation - одна запись истории цены. Append-only.
type PriceObservation struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ItemID     uuid.UUID       `json:"item_id" db:"item_id"`
	Price      decimal.Decimal `json:"price" db:"price"`
	RecordedAt time.Time       `json:"recorded_at" db:"recorded_at"`
}

func NewPriceObservation(itemID uuid.UUID, price decimal.Decimal, at time.Time) *PriceObservation {
	return &PriceObservation{
		ID:         uuid.New(),
		ItemID:     itemID,
		Price:      price,
		RecordedAt: at,
	}
}

// PriceUpdate is the result of one price update request.
// Observation and Notification are nil when nothing was recorded.
type PriceUpdate struct {
	Item         *Item             `json:"item"`
	Observation  *PriceObservation `json:"observation"`
	Notification *Notification     `json:"notification,omitempty"`
}

// Changed reports whether the update appended an observation.
func (u *PriceUpdate) Changed() bool {
	return u.Observation != nil
}

// PriceDrop - позиция с процентом падения от начальной цены
type PriceDrop struct {
	Item           Item            `json:"item"`
	DropPercentage decimal.Decimal `json:"drop_percentage"`
	HasPriceDrop   bool            `json:"has_price_drop"`
}

// ItemDetail - позиция вместе с историей цены
type ItemDetail struct {
	Item         Item               `json:"item"`
	PriceHistory []PriceObservation `json:"price_history"`
}

// PriceObservedEvent - событие Kafka о новой наблюдаемой цене
type PriceObservedEvent struct {
	ItemID     uuid.UUID           `json:"item_id"`
	Price      decimal.NullDecimal `json:"price"`
	Source     string              `json:"source,omitempty"`
	ObservedAt time.Time           `json:"observed_at"`
}
