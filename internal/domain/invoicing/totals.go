package invoicing

import (
	"github.com/shopspring/decimal"
)

// TotalsInput is everything the aggregator reads
type TotalsInput struct {
	Rows           []LineRow
	Charges        []AdditionalCharge
	BillDiscount   *BillDiscount
	SupplyType     SupplyType
	RoundOff       bool
	AmountReceived decimal.Decimal
}

// Totals are the derived invoice-level figures. They are never stored on the
// invoice; call Compute (or SalesInvoice.Totals) whenever they are needed.
type Totals struct {
	GrossAmount         decimal.Decimal // Σ quantity × price
	ItemDiscountTotal   decimal.Decimal
	LineTotal           decimal.Decimal // Σ row amounts
	ChargeTotal         decimal.Decimal
	Subtotal            decimal.Decimal // LineTotal + ChargeTotal
	BillDiscountType    BillDiscountType
	BillDiscountPercent decimal.Decimal
	BillDiscountAmount  decimal.Decimal
	TaxableValue        decimal.Decimal
	TaxGroups           []TaxEntry
	CGST                decimal.Decimal
	SGST                decimal.Decimal
	IGST                decimal.Decimal
	TaxTotal            decimal.Decimal
	RoundOff            decimal.Decimal
	Total               decimal.Decimal
	AmountReceived      decimal.Decimal
	Balance             decimal.Decimal
}

// Compute derives invoice totals from rows, charges and header state.
//
// A before_tax bill discount reduces the taxable value and scales every rate
// group's tax by the same factor; an after_tax discount is measured against
// taxable value plus tax and subtracted from the total.
func Compute(in TotalsInput) Totals {
	t := Totals{
		GrossAmount:       decimal.Zero,
		ItemDiscountTotal: decimal.Zero,
		AmountReceived:    in.AmountReceived,
		RoundOff:          decimal.Zero,
	}
	for _, r := range in.Rows {
		t.GrossAmount = t.GrossAmount.Add(r.BaseAmount())
		t.ItemDiscountTotal = t.ItemDiscountTotal.Add(r.DiscountValue())
	}
	t.GrossAmount = t.GrossAmount.Round(amountPlaces)
	t.LineTotal = sumRowAmounts(in.Rows)
	t.ChargeTotal = sumChargeAmounts(in.Charges)
	t.Subtotal = t.LineTotal.Add(t.ChargeTotal)
	t.TaxableValue = t.Subtotal

	groups := GroupTaxes(taxEntries(in.Rows, in.Charges, in.SupplyType))
	afterTaxDiscount := decimal.Zero

	if bd := in.BillDiscount; bd != nil {
		t.BillDiscountType = bd.Type
		switch bd.Type {
		case BillDiscountBeforeTax:
			t.BillDiscountAmount, t.BillDiscountPercent = bd.resolve(t.Subtotal)
			t.TaxableValue = t.Subtotal.Sub(t.BillDiscountAmount)
			if t.Subtotal.IsPositive() && t.BillDiscountAmount.IsPositive() {
				factor := t.TaxableValue.Div(t.Subtotal)
				for i := range groups {
					groups[i] = groups[i].scale(factor)
				}
			}
		case BillDiscountAfterTax:
			t.BillDiscountAmount, t.BillDiscountPercent = bd.resolve(t.Subtotal.Add(sumTax(groups)))
			afterTaxDiscount = t.BillDiscountAmount
		}
	}

	t.TaxGroups = groups
	t.CGST, t.SGST, t.IGST = decimal.Zero, decimal.Zero, decimal.Zero
	for _, g := range groups {
		t.CGST = t.CGST.Add(g.CGST)
		t.SGST = t.SGST.Add(g.SGST)
		t.IGST = t.IGST.Add(g.IGST)
	}
	t.TaxTotal = t.CGST.Add(t.SGST).Add(t.IGST)

	raw := t.TaxableValue.Add(t.TaxTotal).Sub(afterTaxDiscount)
	if in.RoundOff {
		t.RoundOff = raw.Round(0).Sub(raw)
	}
	t.Total = raw.Add(t.RoundOff)
	t.Balance = t.Total.Sub(t.AmountReceived)
	return t
}

// taxEntries collects one entry per taxed row and charge
func taxEntries(rows []LineRow, charges []AdditionalCharge, supply SupplyType) []TaxEntry {
	entries := make([]TaxEntry, 0, len(rows)+len(charges))
	for _, r := range rows {
		if r.TaxRate().IsZero() && r.TaxValue().IsZero() {
			continue
		}
		entries = append(entries, SplitTax(r.TaxRate(), r.Amount, r.TaxValue(), supply))
	}
	for _, c := range charges {
		if c.TaxRate().IsZero() {
			continue
		}
		entries = append(entries, SplitTax(c.TaxRate(), c.Amount, c.TaxAmount(), supply))
	}
	return entries
}

func sumRowAmounts(rows []LineRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	return total
}

func sumChargeAmounts(charges []AdditionalCharge) decimal.Decimal {
	total := decimal.Zero
	for _, c := range charges {
		total = total.Add(c.Amount)
	}
	return total
}

func sumTax(groups []TaxEntry) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Total())
	}
	return total
}
