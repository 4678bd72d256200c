package pricing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidatePrice(t *testing.T) {
	tests := []struct {
		name    string
		price   decimal.NullDecimal
		wantErr bool
	}{
		{name: "unset", price: decimal.NullDecimal{}, wantErr: true},
		{name: "negative", price: decimal.NewNullDecimal(d("-0.01")), wantErr: true},
		{name: "zero", price: decimal.NewNullDecimal(decimal.Zero)},
		{name: "positive", price: decimal.NewNullDecimal(d("19.99"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePrice(tt.price)
			if tt.wantErr {
				require.ErrorIs(t, err, entity.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.price.Decimal))
		})
	}
}

func TestOpen_SeedsAllPriceFields(t *testing.T) {
	item := entity.NewItem(uuid.New(), "Headphones")
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	obs := Open(item, d("100"), at)

	require.NotNil(t, obs)
	assert.Equal(t, item.ID, obs.ItemID)
	assert.True(t, obs.Price.Equal(d("100")))
	assert.Equal(t, at, obs.RecordedAt)
	for _, p := range []decimal.NullDecimal{item.CurrentPrice, item.InitialPrice, item.LowestPrice, item.HighestPrice} {
		require.True(t, p.Valid)
		assert.True(t, p.Decimal.Equal(d("100")))
	}
}

func TestRecord_FirstPriceOnUnpricedItem(t *testing.T) {
	item := entity.NewItem(uuid.New(), "Lamp")

	out := Record(item, d("42.50"), time.Now())

	assert.True(t, out.Changed)
	assert.False(t, out.OldPrice.Valid)
	require.NotNil(t, out.Observation)
	assert.True(t, item.LowestPrice.Decimal.Equal(d("42.50")))
	assert.True(t, item.HighestPrice.Decimal.Equal(d("42.50")))
	assert.False(t, item.InitialPrice.Valid, "initial price is only set at creation")
}

func TestRecord_UnchangedIsNoop(t *testing.T) {
	item := entity.NewItem(uuid.New(), "Book")
	Open(item, d("10.00"), time.Now())
	before := *item

	out := Record(item, d("10"), time.Now())

	assert.False(t, out.Changed)
	assert.Nil(t, out.Observation)
	assert.Equal(t, before, *item)
}

func TestRecord_ExtraPrecisionIsAChange(t *testing.T) {
	item := entity.NewItem(uuid.New(), "Book")
	Open(item, d("10.00"), time.Now())

	out := Record(item, d("10.001"), time.Now())

	assert.True(t, out.Changed)
	assert.True(t, item.HighestPrice.Decimal.Equal(d("10.001")))
}

func TestRecord_UpdatesExtrema(t *testing.T) {
	item := entity.NewItem(uuid.New(), "Chair")
	Open(item, d("100"), time.Now())

	Record(item, d("90"), time.Now())
	Record(item, d("120"), time.Now())
	out := Record(item, d("95"), time.Now())

	assert.True(t, out.OldPrice.Decimal.Equal(d("120")))
	assert.True(t, item.CurrentPrice.Decimal.Equal(d("95")))
	assert.True(t, item.LowestPrice.Decimal.Equal(d("90")))
	assert.True(t, item.HighestPrice.Decimal.Equal(d("120")))
	assert.True(t, item.InitialPrice.Decimal.Equal(d("100")))
}

func TestRecord_ExtremaMonotonic(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		item := entity.NewItem(uuid.New(), "Random")
		if run%2 == 0 {
			Open(item, decimal.NewFromInt(int64(rnd.Intn(500))), time.Now())
		}

		var prevLow, prevHigh decimal.NullDecimal
		for step := 0; step < 40; step++ {
			price := decimal.New(int64(rnd.Intn(50000)), -2)
			Record(item, price, time.Now())

			require.True(t, item.CurrentPrice.Valid)
			assert.True(t, item.LowestPrice.Decimal.LessThanOrEqual(item.CurrentPrice.Decimal))
			assert.True(t, item.CurrentPrice.Decimal.LessThanOrEqual(item.HighestPrice.Decimal))
			if prevLow.Valid {
				assert.True(t, item.LowestPrice.Decimal.LessThanOrEqual(prevLow.Decimal))
				assert.True(t, item.HighestPrice.Decimal.GreaterThanOrEqual(prevHigh.Decimal))
			}
			prevLow, prevHigh = item.LowestPrice, item.HighestPrice
		}
	}
}
