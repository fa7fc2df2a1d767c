package invoicing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, context ...string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s %v", want, got.String(), context)
}

func assertNullDecimal(t *testing.T, want string, got decimal.NullDecimal) {
	t.Helper()
	if assert.True(t, got.Valid, "expected value %s, got null", want) {
		assertDecimal(t, want, got.Decimal)
	}
}

// rowOf builds a recomputed row from quantity and price
func rowOf(qty, price string) LineRow {
	return NewLineRow().Edit(EditedQuantity, d(qty)).Edit(EditedPrice, d(price))
}

func assertSameRow(t *testing.T, want, got LineRow) {
	t.Helper()
	assert.True(t, want.Quantity.Equal(got.Quantity))
	assert.True(t, want.Price.Equal(got.Price))
	assert.Equal(t, want.DiscountPercent.Valid, got.DiscountPercent.Valid)
	assert.True(t, want.DiscountPercent.Decimal.Equal(got.DiscountPercent.Decimal))
	assert.Equal(t, want.DiscountAmount.Valid, got.DiscountAmount.Valid)
	assert.True(t, want.DiscountAmount.Decimal.Equal(got.DiscountAmount.Decimal))
	assert.Equal(t, want.TaxPercent.Valid, got.TaxPercent.Valid)
	assert.True(t, want.TaxPercent.Decimal.Equal(got.TaxPercent.Decimal))
	assert.Equal(t, want.TaxAmount.Valid, got.TaxAmount.Valid)
	assert.True(t, want.TaxAmount.Decimal.Equal(got.TaxAmount.Decimal))
	assert.True(t, want.Amount.Equal(got.Amount))
	assert.Equal(t, want.DiscountBasis, got.DiscountBasis)
	assert.Equal(t, want.TaxBasis, got.TaxBasis)
	assert.Equal(t, want.DiscountSource, got.DiscountSource)
}
