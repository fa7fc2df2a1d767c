package invoicing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEditedField(t *testing.T) {
	t.Run("IsValid returns true for known fields", func(t *testing.T) {
		for _, f := range []EditedField{
			EditedQuantity, EditedPrice,
			EditedDiscountPercent, EditedDiscountAmount,
			EditedTaxPercent, EditedTaxAmount,
		} {
			assert.True(t, f.IsValid(), f.String())
		}
	})

	t.Run("IsValid returns false for unknown fields", func(t *testing.T) {
		assert.False(t, EditedField("discountPer").IsValid())
		assert.False(t, EditedField("").IsValid())
	})
}

func TestNewLineRow(t *testing.T) {
	row := NewLineRow()
	assert.NotEqual(t, uuid.Nil, row.ID)
	assert.Nil(t, row.ItemID)
	assert.True(t, row.Quantity.IsZero())
	assert.True(t, row.Price.IsZero())
	assert.True(t, row.Amount.IsZero())
	assert.False(t, row.DiscountPercent.Valid)
	assert.False(t, row.TaxAmount.Valid)
	assert.Equal(t, DiscountSourceUnset, row.DiscountSource)
}

func TestLineRow_Edit(t *testing.T) {
	t.Run("quantity and price set the amount", func(t *testing.T) {
		row := rowOf("10", "100")
		assertDecimal(t, "1000", row.BaseAmount())
		assertDecimal(t, "1000", row.Amount)
		assert.False(t, row.DiscountAmount.Valid)
		assert.False(t, row.TaxAmount.Valid)
	})

	t.Run("discount percent derives discount amount", func(t *testing.T) {
		row := rowOf("10", "100").Edit(EditedDiscountPercent, d("10"))
		assertNullDecimal(t, "100", row.DiscountAmount)
		assertDecimal(t, "900", row.Amount)
		assert.Equal(t, BasisPercent, row.DiscountBasis)
		assert.Equal(t, DiscountSourceItem, row.DiscountSource)
	})

	t.Run("tax is computed on the discounted value", func(t *testing.T) {
		row := rowOf("10", "100").
			Edit(EditedDiscountPercent, d("10")).
			Edit(EditedTaxPercent, d("5"))
		assertNullDecimal(t, "45", row.TaxAmount)
		assertDecimal(t, "900", row.Amount, "tax is not folded into amount")
	})

	t.Run("quantity change keeps percentages as source of truth", func(t *testing.T) {
		row := rowOf("10", "100").
			Edit(EditedDiscountPercent, d("10")).
			Edit(EditedTaxPercent, d("5")).
			Edit(EditedQuantity, d("20"))
		assertNullDecimal(t, "200", row.DiscountAmount)
		assertNullDecimal(t, "90", row.TaxAmount)
		assertDecimal(t, "1800", row.Amount)
	})

	t.Run("discount amount derives percentage", func(t *testing.T) {
		row := rowOf("20", "100").Edit(EditedDiscountAmount, d("250"))
		assertNullDecimal(t, "12.5", row.DiscountPercent)
		assertDecimal(t, "1750", row.Amount)
		assert.Equal(t, BasisAmount, row.DiscountBasis)
	})

	t.Run("quantity change keeps amounts as source of truth", func(t *testing.T) {
		row := rowOf("20", "100").
			Edit(EditedDiscountAmount, d("250")).
			Edit(EditedTaxPercent, d("5")).
			Edit(EditedQuantity, d("25"))
		assertNullDecimal(t, "250", row.DiscountAmount)
		assertNullDecimal(t, "10", row.DiscountPercent)
		assertNullDecimal(t, "112.5", row.TaxAmount)
	})

	t.Run("tax amount derives tax percentage", func(t *testing.T) {
		row := rowOf("1", "1000").Edit(EditedTaxAmount, d("180"))
		assertNullDecimal(t, "18", row.TaxPercent)
		assert.Equal(t, BasisAmount, row.TaxBasis)
	})

	t.Run("zero discount clears the item source", func(t *testing.T) {
		row := rowOf("1", "100").Edit(EditedDiscountPercent, d("10")).Edit(EditedDiscountPercent, decimal.Zero)
		assert.Equal(t, DiscountSourceUnset, row.DiscountSource)
		assert.False(t, row.HasItemDiscount())
	})

	t.Run("unknown field leaves the row untouched", func(t *testing.T) {
		row := rowOf("3", "7")
		got := row.Edit(EditedField("colour"), d("99"))
		assertSameRow(t, row, got)
	})

	t.Run("receiver is not modified", func(t *testing.T) {
		row := rowOf("3", "7")
		_ = row.Edit(EditedQuantity, d("100"))
		assertDecimal(t, "3", row.Quantity)
	})
}

func TestLineRow_RecalculateIsIdempotent(t *testing.T) {
	rows := []struct {
		name   string
		row    LineRow
		edited EditedField
	}{
		{"percent basis", rowOf("7", "13.33").Edit(EditedDiscountPercent, d("7.5")).Edit(EditedTaxPercent, d("12")), EditedDiscountPercent},
		{"amount basis", rowOf("3", "333.33").Edit(EditedDiscountAmount, d("17.17")).Edit(EditedTaxAmount, d("49.99")), EditedTaxAmount},
		{"quantity", rowOf("2.5", "41.2").Edit(EditedTaxPercent, d("5")), EditedQuantity},
		{"no discount or tax", rowOf("1", "1"), EditedPrice},
	}
	for _, tt := range rows {
		t.Run(tt.name, func(t *testing.T) {
			once := tt.row.Recalculate(tt.edited)
			twice := once.Recalculate(tt.edited)
			assertSameRow(t, once, twice)
		})
	}
}

func TestPercentAmountDuality(t *testing.T) {
	t.Run("exact example", func(t *testing.T) {
		base := d("1000")
		amount := PercentOf(base, d("10"))
		assertDecimal(t, "100", amount)
		assertDecimal(t, "10", RatioPercent(amount, base))
	})

	t.Run("round trip through a row", func(t *testing.T) {
		row := rowOf("1", "1000").Edit(EditedDiscountPercent, d("10"))
		assertNullDecimal(t, "100", row.DiscountAmount)
		row = row.Edit(EditedDiscountAmount, row.DiscountAmount.Decimal)
		assertNullDecimal(t, "10", row.DiscountPercent)
	})

	t.Run("percentages within tolerance", func(t *testing.T) {
		tolerance := d("0.001")
		for _, base := range []string{"1000", "2500.50", "99999"} {
			for _, pct := range []string{"0", "2.5", "12.5", "33.3333", "66.6667", "99.99", "100"} {
				amount := PercentOf(d(base), d(pct))
				back := RatioPercent(amount, d(base))
				assert.True(t, back.Sub(d(pct)).Abs().LessThanOrEqual(tolerance),
					"base=%s pct=%s back=%s", base, pct, back)
			}
		}
	})
}

func TestZeroBaseSafety(t *testing.T) {
	t.Run("discount amount against zero base yields zero percent", func(t *testing.T) {
		row := rowOf("0", "100").Edit(EditedDiscountAmount, d("50"))
		assertNullDecimal(t, "0", row.DiscountPercent)
		assertNullDecimal(t, "50", row.DiscountAmount)
	})

	t.Run("tax amount against zero base yields zero percent", func(t *testing.T) {
		row := NewLineRow().Edit(EditedTaxAmount, d("18"))
		assertNullDecimal(t, "0", row.TaxPercent)
	})

	t.Run("negative base yields zero percent", func(t *testing.T) {
		row := rowOf("-2", "100").Edit(EditedDiscountAmount, d("10"))
		assertNullDecimal(t, "0", row.DiscountPercent)
		assertDecimal(t, "-210", row.Amount)
	})

	assertDecimal(t, "0", RatioPercent(d("1"), decimal.Zero))
}

func TestLineRow_ClearDiscount(t *testing.T) {
	row := rowOf("10", "10").Edit(EditedDiscountPercent, d("20")).Edit(EditedTaxPercent, d("10"))
	assertNullDecimal(t, "8", row.TaxAmount)

	cleared := row.ClearDiscount()
	assertNullDecimal(t, "0", cleared.DiscountPercent)
	assertNullDecimal(t, "0", cleared.DiscountAmount)
	assert.Equal(t, BasisUnset, cleared.DiscountBasis)
	assert.Equal(t, DiscountSourceUnset, cleared.DiscountSource)
	assertDecimal(t, "100", cleared.Amount)
	assertNullDecimal(t, "10", cleared.TaxAmount)
}

func TestLineRow_InferredBasis(t *testing.T) {
	// rows hydrated without edit tags fall back to the side that is present
	row := LineRow{
		Quantity:       d("4"),
		Price:          d("50"),
		DiscountAmount: decimal.NewNullDecimal(d("20")),
	}
	got := row.Recalculate(EditedQuantity)
	assertNullDecimal(t, "10", got.DiscountPercent)
	assertDecimal(t, "180", got.Amount)
}
