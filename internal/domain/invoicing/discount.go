package invoicing

import (
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillDiscountType says whether the bill discount reduces the taxable value
// or the tax-inclusive total
type BillDiscountType string

const (
	BillDiscountBeforeTax BillDiscountType = "before_tax"
	BillDiscountAfterTax  BillDiscountType = "after_tax"
)

// IsValid checks if the discount type is known
func (t BillDiscountType) IsValid() bool {
	return t == BillDiscountBeforeTax || t == BillDiscountAfterTax
}

func (t BillDiscountType) String() string {
	return string(t)
}

// BillDiscount is the invoice-level discount. Percent and Amount follow the
// same duality as a row's discount, with Basis naming the side entered last.
type BillDiscount struct {
	Type    BillDiscountType
	Percent decimal.NullDecimal
	Amount  decimal.NullDecimal
	Basis   Basis
}

// resolve returns the discount amount and percentage against base
func (b BillDiscount) resolve(base decimal.Decimal) (amount, percent decimal.Decimal) {
	pct, amt := resolvePair(base, b.Basis, b.Percent, b.Amount)
	return valueOrZero(amt), valueOrZero(pct)
}

// ErrDiscountConflict is returned when item-level and bill-level discounts
// would both be active. It is a warning: the invoice is left unchanged.
var ErrDiscountConflict = shared.NewDomainError("DISCOUNT_CONFLICT", "Item discounts and a bill discount cannot be used together")

// hasItemDiscounts reports whether any row carries its own discount
func hasItemDiscounts(rows []LineRow) bool {
	for _, r := range rows {
		if r.HasItemDiscount() {
			return true
		}
	}
	return false
}

// ActivateBillDiscount opens the bill discount with a zero value. It is
// rejected while any row has an item discount.
func (inv *SalesInvoice) ActivateBillDiscount(discountType BillDiscountType) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Bill discount type must be before_tax or after_tax")
	}
	if hasItemDiscounts(inv.Rows) {
		return ErrDiscountConflict
	}
	if inv.BillDiscount != nil {
		inv.BillDiscount.Type = discountType
		return nil
	}
	inv.BillDiscount = &BillDiscount{
		Type:    discountType,
		Percent: decimal.NewNullDecimal(decimal.Zero),
		Amount:  decimal.NewNullDecimal(decimal.Zero),
		Basis:   BasisPercent,
	}
	for i := range inv.Rows {
		inv.Rows[i].DiscountSource = DiscountSourceBill
	}
	return nil
}

// EditBillDiscount sets the bill discount percentage (BasisPercent) or amount
// (BasisAmount), activating the discount if needed.
func (inv *SalesInvoice) EditBillDiscount(discountType BillDiscountType, basis Basis, value decimal.Decimal) error {
	if basis != BasisPercent && basis != BasisAmount {
		return shared.NewDomainError("INVALID_DISCOUNT", "Bill discount must be edited as percent or amount")
	}
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Bill discount cannot be negative")
	}
	if basis == BasisPercent && value.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Bill discount percentage cannot exceed 100")
	}
	if err := inv.ActivateBillDiscount(discountType); err != nil {
		return err
	}

	bd := inv.BillDiscount
	bd.Basis = basis
	if basis == BasisPercent {
		bd.Percent = decimal.NewNullDecimal(value)
	} else {
		bd.Amount = decimal.NewNullDecimal(value)
	}
	// keep the stored pair consistent with the current subtotal
	pct, amt := resolvePair(inv.discountBase(bd.Type), bd.Basis, bd.Percent, bd.Amount)
	bd.Percent, bd.Amount = pct, amt
	return nil
}

// ClearBillDiscount closes the bill discount and resets every row's discount
// fields and tags to neutral.
func (inv *SalesInvoice) ClearBillDiscount() error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	inv.BillDiscount = nil
	for i := range inv.Rows {
		inv.Rows[i] = inv.Rows[i].ClearDiscount()
	}
	return nil
}

// discountBase is the amount a bill discount of type t is measured against
func (inv *SalesInvoice) discountBase(t BillDiscountType) decimal.Decimal {
	subtotal := sumRowAmounts(inv.Rows).Add(sumChargeAmounts(inv.Charges))
	if t == BillDiscountBeforeTax {
		return subtotal
	}
	entries := taxEntries(inv.Rows, inv.Charges, inv.SupplyType)
	return subtotal.Add(sumTax(GroupTaxes(entries)))
}
