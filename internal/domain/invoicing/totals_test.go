package invoicing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func percentDiscount(t BillDiscountType, pct string) *BillDiscount {
	return &BillDiscount{Type: t, Percent: decimal.NewNullDecimal(d(pct)), Basis: BasisPercent}
}

func TestCompute(t *testing.T) {
	t.Run("sums row amounts into taxable value", func(t *testing.T) {
		totals := Compute(TotalsInput{
			Rows:       []LineRow{rowOf("1", "100"), rowOf("1", "200")},
			SupplyType: SupplyIntrastate,
		})
		assertDecimal(t, "300", totals.Subtotal)
		assertDecimal(t, "300", totals.TaxableValue)
		assertDecimal(t, "300", totals.Total)
		assertDecimal(t, "300", totals.Balance)
		assert.Empty(t, totals.TaxGroups)
	})

	t.Run("before_tax bill discount reduces taxable value", func(t *testing.T) {
		totals := Compute(TotalsInput{
			Rows:         []LineRow{rowOf("1", "100"), rowOf("1", "200")},
			BillDiscount: percentDiscount(BillDiscountBeforeTax, "10"),
			SupplyType:   SupplyIntrastate,
		})
		assertDecimal(t, "270", totals.TaxableValue)
		assertDecimal(t, "30", totals.BillDiscountAmount)
		assertDecimal(t, "10", totals.BillDiscountPercent)
		assertDecimal(t, "270", totals.Total)
	})

	t.Run("before_tax bill discount scales tax groups", func(t *testing.T) {
		totals := Compute(TotalsInput{
			Rows:         []LineRow{rowOf("1", "1000").Edit(EditedTaxPercent, d("18"))},
			BillDiscount: percentDiscount(BillDiscountBeforeTax, "10"),
			SupplyType:   SupplyIntrastate,
		})
		assertDecimal(t, "900", totals.TaxableValue)
		require.Len(t, totals.TaxGroups, 1)
		assertDecimal(t, "81", totals.CGST)
		assertDecimal(t, "81", totals.SGST)
		assertDecimal(t, "162", totals.TaxTotal)
		assertDecimal(t, "1062", totals.Total)
	})

	t.Run("after_tax bill discount comes off the total", func(t *testing.T) {
		totals := Compute(TotalsInput{
			Rows:         []LineRow{rowOf("1", "1000").Edit(EditedTaxPercent, d("18"))},
			BillDiscount: percentDiscount(BillDiscountAfterTax, "10"),
			SupplyType:   SupplyIntrastate,
		})
		assertDecimal(t, "1000", totals.TaxableValue)
		assertDecimal(t, "180", totals.TaxTotal)
		assertDecimal(t, "118", totals.BillDiscountAmount)
		assertDecimal(t, "1062", totals.Total)
	})

	t.Run("bill discount entered as amount derives percent", func(t *testing.T) {
		totals := Compute(TotalsInput{
			Rows: []LineRow{rowOf("2", "100")},
			BillDiscount: &BillDiscount{
				Type:   BillDiscountBeforeTax,
				Amount: decimal.NewNullDecimal(d("50")),
				Basis:  BasisAmount,
			},
		})
		assertDecimal(t, "25", totals.BillDiscountPercent)
		assertDecimal(t, "150", totals.TaxableValue)
	})

	t.Run("additional charges join taxable value and tax groups", func(t *testing.T) {
		rate := d("12")
		freight, err := NewAdditionalCharge("Freight", d("200"), &rate)
		require.NoError(t, err)
		packing, err := NewAdditionalCharge("Packing", d("50"), nil)
		require.NoError(t, err)

		totals := Compute(TotalsInput{
			Rows:       []LineRow{rowOf("1", "1000").Edit(EditedTaxPercent, d("12"))},
			Charges:    []AdditionalCharge{freight, packing},
			SupplyType: SupplyInterstate,
		})
		assertDecimal(t, "250", totals.ChargeTotal)
		assertDecimal(t, "1250", totals.TaxableValue)
		require.Len(t, totals.TaxGroups, 1)
		assertDecimal(t, "1200", totals.TaxGroups[0].Taxable)
		assertDecimal(t, "144", totals.IGST)
		assertDecimal(t, "0", totals.CGST)
		assertDecimal(t, "1394", totals.Total)
	})

	t.Run("item discounts are reported", func(t *testing.T) {
		totals := Compute(TotalsInput{
			Rows: []LineRow{rowOf("10", "100").Edit(EditedDiscountPercent, d("5"))},
		})
		assertDecimal(t, "1000", totals.GrossAmount)
		assertDecimal(t, "50", totals.ItemDiscountTotal)
		assertDecimal(t, "950", totals.LineTotal)
	})
}

func TestCompute_RoundOff(t *testing.T) {
	tests := []struct {
		price    string
		roundOff string
		total    string
	}{
		{"100.40", "-0.40", "100"},
		{"100.50", "0.50", "101"},
		{"100.00", "0", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			totals := Compute(TotalsInput{Rows: []LineRow{rowOf("1", tt.price)}, RoundOff: true})
			assertDecimal(t, tt.roundOff, totals.RoundOff)
			assertDecimal(t, tt.total, totals.Total)
		})
	}

	t.Run("disabled rounding leaves paise", func(t *testing.T) {
		totals := Compute(TotalsInput{Rows: []LineRow{rowOf("1", "100.40")}})
		assertDecimal(t, "0", totals.RoundOff)
		assertDecimal(t, "100.40", totals.Total)
	})
}

func TestCompute_Balance(t *testing.T) {
	rows := []LineRow{rowOf("1", "1000").Edit(EditedTaxPercent, d("18"))}

	partial := Compute(TotalsInput{Rows: rows, AmountReceived: d("500"), SupplyType: SupplyIntrastate})
	assertDecimal(t, "680", partial.Balance)

	over := Compute(TotalsInput{Rows: rows, AmountReceived: d("1500"), SupplyType: SupplyIntrastate})
	assertDecimal(t, "-320", over.Balance)
}
