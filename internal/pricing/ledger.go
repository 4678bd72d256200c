// Package pricing holds the price ledger and drop detection rules.
// Nothing here touches storage; callers persist the results.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

// Outcome describes what Record did to an item.
type Outcome struct {
	Changed     bool
	OldPrice    decimal.NullDecimal
	NewPrice    decimal.Decimal
	Observation *entity.PriceObservation
}

// ValidatePrice returns the price if it is set and non-negative.
func ValidatePrice(price decimal.NullDecimal) (decimal.Decimal, error) {
	if !price.Valid {
		return decimal.Decimal{}, entity.Invalidf("price is required")
	}
	if price.Decimal.IsNegative() {
		return decimal.Decimal{}, entity.Invalidf("price must be non-negative, got %s", price.Decimal)
	}
	return price.Decimal, nil
}

// Open seeds a new item with its first price: initial, lowest, highest and
// current all become price. The returned observation is the first history entry.
func Open(item *entity.Item, price decimal.Decimal, at time.Time) *entity.PriceObservation {
	p := decimal.NewNullDecimal(price)
	item.CurrentPrice = p
	item.InitialPrice = p
	item.LowestPrice = p
	item.HighestPrice = p
	item.UpdatedAt = at
	return entity.NewPriceObservation(item.ID, price, at)
}

// Record applies an observed price to item. Equal prices (exact decimal
// equality) leave the item untouched. Otherwise the item's current price and
// extrema move and a new observation is returned for persisting.
// InitialPrice is never modified here.
func Record(item *entity.Item, newPrice decimal.Decimal, at time.Time) Outcome {
	old := item.CurrentPrice
	if old.Valid && old.Decimal.Equal(newPrice) {
		return Outcome{OldPrice: old, NewPrice: newPrice}
	}

	item.CurrentPrice = decimal.NewNullDecimal(newPrice)
	item.LowestPrice = lower(item.LowestPrice, newPrice)
	item.HighestPrice = higher(item.HighestPrice, newPrice)
	item.UpdatedAt = at

	return Outcome{
		Changed:     true,
		OldPrice:    old,
		NewPrice:    newPrice,
		Observation: entity.NewPriceObservation(item.ID, newPrice, at),
	}
}

func lower(current decimal.NullDecimal, price decimal.Decimal) decimal.NullDecimal {
	if !current.Valid || price.LessThan(current.Decimal) {
		return decimal.NewNullDecimal(price)
	}
	return current
}

func higher(current decimal.NullDecimal, price decimal.Decimal) decimal.NullDecimal {
	if !current.Valid || price.GreaterThan(current.Decimal) {
		return decimal.NewNullDecimal(price)
	}
	return current
}
