package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

var hundred = decimal.NewFromInt(100)

// DropEvent - падение цены относительно предыдущей
type DropEvent struct {
	OldPrice   decimal.Decimal
	NewPrice   decimal.Decimal
	Percentage decimal.Decimal
}

// Detect reports a drop when both prices are set, old is non-zero and new < old.
// Percentage = (old - new) / old * 100.
func Detect(oldPrice, newPrice decimal.NullDecimal) (DropEvent, bool) {
	if !oldPrice.Valid || !newPrice.Valid || oldPrice.Decimal.IsZero() {
		return DropEvent{}, false
	}
	if !newPrice.Decimal.LessThan(oldPrice.Decimal) {
		return DropEvent{}, false
	}

	return DropEvent{
		OldPrice:   oldPrice.Decimal,
		NewPrice:   newPrice.Decimal,
		Percentage: oldPrice.Decimal.Sub(newPrice.Decimal).Mul(hundred).Div(oldPrice.Decimal),
	}, true
}

// DropSinceInitial compares the item's current price with its initial price.
func DropSinceInitial(item *entity.Item) (DropEvent, bool) {
	return Detect(item.InitialPrice, item.CurrentPrice)
}

// DropMessage renders the price_drop notification text.
func DropMessage(itemName string, drop DropEvent) string {
	return fmt.Sprintf("Price dropped by %s%% on %s", drop.Percentage.StringFixed(2), itemName)
}
