package invoicing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

const (
	amountPlaces  int32 = 2
	percentPlaces int32 = 4
)

// EditedField names the row field the user changed last. Each value maps to
// exactly one recompute function in rowRecomputers.
type EditedField string

const (
	EditedQuantity        EditedField = "quantity"
	EditedPrice           EditedField = "price"
	EditedDiscountPercent EditedField = "discount_percent"
	EditedDiscountAmount  EditedField = "discount_amount"
	EditedTaxPercent      EditedField = "tax_percent"
	EditedTaxAmount       EditedField = "tax_amount"
)

// IsValid checks if the field is a known EditedField
func (f EditedField) IsValid() bool {
	_, ok := rowRecomputers[f]
	return ok
}

func (f EditedField) String() string {
	return string(f)
}

// Basis records which side of a percentage/amount pair is the source of truth
type Basis string

const (
	BasisUnset   Basis = ""
	BasisPercent Basis = "percent"
	BasisAmount  Basis = "amount"
)

// DiscountSource tags where a row's discount comes from
type DiscountSource string

const (
	DiscountSourceUnset DiscountSource = ""
	DiscountSourceItem  DiscountSource = "item"
	DiscountSourceBill  DiscountSource = "bill"
)

// LineRow is one billed item line. Discount and tax fields are nullable: an
// invalid NullDecimal means the user never entered anything on that pair.
type LineRow struct {
	ID              uuid.UUID
	ItemID          *uuid.UUID
	Description     string
	HSNCode         string
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	DiscountPercent decimal.NullDecimal
	DiscountAmount  decimal.NullDecimal
	TaxPercent      decimal.NullDecimal
	TaxAmount       decimal.NullDecimal
	Amount          decimal.Decimal
	DiscountBasis   Basis
	TaxBasis        Basis
	DiscountSource  DiscountSource
}

// NewLineRow returns a row with zeroed defaults
func NewLineRow() LineRow {
	return LineRow{
		ID:       uuid.New(),
		Quantity: decimal.Zero,
		Price:    decimal.Zero,
		Amount:   decimal.Zero,
	}
}

// BaseAmount is quantity × price
func (r LineRow) BaseAmount() decimal.Decimal {
	return r.Quantity.Mul(r.Price)
}

// DiscountValue returns the discount amount, zero when unset
func (r LineRow) DiscountValue() decimal.Decimal {
	return valueOrZero(r.DiscountAmount)
}

// TaxValue returns the tax amount, zero when unset
func (r LineRow) TaxValue() decimal.Decimal {
	return valueOrZero(r.TaxAmount)
}

// TaxRate returns the tax percentage, zero when unset
func (r LineRow) TaxRate() decimal.Decimal {
	return valueOrZero(r.TaxPercent)
}

// TaxableAmount is the row's tax base: base amount less item discount
func (r LineRow) TaxableAmount() decimal.Decimal {
	return r.BaseAmount().Sub(r.DiscountValue())
}

// HasItemDiscount reports whether the row carries a discount of its own. A
// positive percentage counts even on a zero base, and the source tag is not
// trusted: rows under a bill discount always hold zero discounts.
func (r LineRow) HasItemDiscount() bool {
	return valueOrZero(r.DiscountPercent).IsPositive() || r.DiscountValue().IsPositive()
}

// Edit sets field to value and returns the recomputed row. The receiver is
// not modified.
func (r LineRow) Edit(field EditedField, value decimal.Decimal) LineRow {
	switch field {
	case EditedQuantity:
		r.Quantity = value
	case EditedPrice:
		r.Price = value
	case EditedDiscountPercent:
		r.DiscountPercent = decimal.NewNullDecimal(value)
		r.DiscountSource = itemSourceFor(value)
	case EditedDiscountAmount:
		r.DiscountAmount = decimal.NewNullDecimal(value)
		r.DiscountSource = itemSourceFor(value)
	case EditedTaxPercent:
		r.TaxPercent = decimal.NewNullDecimal(value)
	case EditedTaxAmount:
		r.TaxAmount = decimal.NewNullDecimal(value)
	default:
		return r
	}
	return r.Recalculate(field)
}

// Recalculate returns a fully consistent row given the field edited last.
// Recalculating twice with the same field yields the same row.
func (r LineRow) Recalculate(edited EditedField) LineRow {
	recompute, ok := rowRecomputers[edited]
	if !ok {
		return r.derive()
	}
	return recompute(r)
}

// Normalize recomputes dependent fields from the stored basis tags. It is
// used when rows arrive from storage or the wire. A positive discount with
// no recorded source is the row's own.
func (r LineRow) Normalize() LineRow {
	r = r.derive()
	if r.HasItemDiscount() {
		r.DiscountSource = DiscountSourceItem
	} else if r.DiscountSource == DiscountSourceItem {
		r.DiscountSource = DiscountSourceUnset
	}
	return r
}

// ClearDiscount resets the discount pair and its tags
func (r LineRow) ClearDiscount() LineRow {
	r.DiscountPercent = decimal.NewNullDecimal(decimal.Zero)
	r.DiscountAmount = decimal.NewNullDecimal(decimal.Zero)
	r.DiscountBasis = BasisUnset
	r.DiscountSource = DiscountSourceUnset
	return r.derive()
}

var rowRecomputers = map[EditedField]func(LineRow) LineRow{
	EditedQuantity: func(r LineRow) LineRow { return r.derive() },
	EditedPrice:    func(r LineRow) LineRow { return r.derive() },
	EditedDiscountPercent: func(r LineRow) LineRow {
		r.DiscountBasis = BasisPercent
		return r.derive()
	},
	EditedDiscountAmount: func(r LineRow) LineRow {
		r.DiscountBasis = BasisAmount
		return r.derive()
	},
	EditedTaxPercent: func(r LineRow) LineRow {
		r.TaxBasis = BasisPercent
		return r.derive()
	},
	EditedTaxAmount: func(r LineRow) LineRow {
		r.TaxBasis = BasisAmount
		return r.derive()
	},
}

// derive fills the dependent side of the discount and tax pairs from their
// basis, discount first and tax on the discounted value.
func (r LineRow) derive() LineRow {
	base := r.BaseAmount()

	r.DiscountPercent, r.DiscountAmount = resolvePair(base, r.DiscountBasis, r.DiscountPercent, r.DiscountAmount)
	taxBase := base.Sub(r.DiscountValue())
	r.TaxPercent, r.TaxAmount = resolvePair(taxBase, r.TaxBasis, r.TaxPercent, r.TaxAmount)

	r.Amount = base.Sub(r.DiscountValue()).Round(amountPlaces)
	return r
}

// resolvePair derives one side of a percentage/amount pair from the other.
// A non-positive base yields a zero percentage.
func resolvePair(base decimal.Decimal, basis Basis, pct, amt decimal.NullDecimal) (decimal.NullDecimal, decimal.NullDecimal) {
	switch inferBasis(basis, pct, amt) {
	case BasisPercent:
		p := valueOrZero(pct)
		return decimal.NewNullDecimal(p), decimal.NewNullDecimal(PercentOf(base, p))
	case BasisAmount:
		a := valueOrZero(amt)
		return decimal.NewNullDecimal(RatioPercent(a, base)), decimal.NewNullDecimal(a)
	default:
		return pct, amt
	}
}

// PercentOf returns base × pct / 100 rounded to currency places
func PercentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred).Round(amountPlaces)
}

// RatioPercent returns amount / base × 100, or zero when base is not positive
func RatioPercent(amount, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(hundred).DivRound(base, percentPlaces)
}

// inferBasis falls back to whichever side is present when no edit was recorded,
// preferring the percentage.
func inferBasis(basis Basis, pct, amt decimal.NullDecimal) Basis {
	if basis != BasisUnset {
		return basis
	}
	if pct.Valid {
		return BasisPercent
	}
	if amt.Valid {
		return BasisAmount
	}
	return BasisUnset
}

func itemSourceFor(value decimal.Decimal) DiscountSource {
	if value.IsPositive() {
		return DiscountSourceItem
	}
	return DiscountSourceUnset
}

func valueOrZero(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}
