package settlement

import (
	"time"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationKind distinguishes amounts the allocator may replace from amounts
// the user typed
type AllocationKind string

const (
	AllocationAuto   AllocationKind = "auto"
	AllocationManual AllocationKind = "manual"
)

// Allocation is the amount applied to one invoice, tagged Auto or Manual.
// Reallocate only ever replaces Auto allocations.
type Allocation struct {
	Kind   AllocationKind
	Amount decimal.Decimal
}

// Auto returns an allocator-owned amount
func Auto(amount decimal.Decimal) Allocation {
	return Allocation{Kind: AllocationAuto, Amount: amount}
}

// Manual returns a user-owned amount
func Manual(amount decimal.Decimal) Allocation {
	return Allocation{Kind: AllocationManual, Amount: amount}
}

func (a Allocation) IsManual() bool {
	return a.Kind == AllocationManual
}

// SelectionOverride records an explicit checkbox toggle on a row
type SelectionOverride string

const (
	SelectionAuto       SelectionOverride = ""
	SelectionSelected   SelectionOverride = "selected"
	SelectionDeselected SelectionOverride = "deselected"
)

// SettlementRow is one outstanding invoice as shown during payment entry
type SettlementRow struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	InvoiceDate   time.Time
	InvoiceTotal  decimal.Decimal
	PendingAmount decimal.Decimal
	Allocation    Allocation
	Override      SelectionOverride
}

// Selected follows an explicit toggle, else whether anything is applied
func (r SettlementRow) Selected() bool {
	switch r.Override {
	case SelectionSelected:
		return true
	case SelectionDeselected:
		return false
	default:
		return r.Allocation.Amount.IsPositive()
	}
}

// ApplyAmount is the amount currently applied to the invoice
func (r SettlementRow) ApplyAmount() decimal.Decimal {
	return r.Allocation.Amount
}

// Remaining is pending minus applied; negative when over-applied
func (r SettlementRow) Remaining() decimal.Decimal {
	return r.PendingAmount.Sub(r.Allocation.Amount)
}

// Excess reports an apply amount above the pending amount. It is a flag, not an error.
func (r SettlementRow) Excess() bool {
	return r.Allocation.Amount.GreaterThan(r.PendingAmount)
}

// PaymentDetail is one invoice settled by a payment
type PaymentDetail struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
}

// Sheet is the payment-entry state for one customer: a total amount and
// the customer's outstanding invoices in list order (oldest first).
type Sheet struct {
	CustomerID  uuid.UUID
	TotalAmount decimal.Decimal
	Rows        []SettlementRow
}

// NewSheet builds a sheet and runs the initial allocation
func NewSheet(customerID uuid.UUID, total decimal.Decimal, rows []SettlementRow) *Sheet {
	s := &Sheet{
		CustomerID:  customerID,
		TotalAmount: total,
		Rows:        append(make([]SettlementRow, 0, len(rows)), rows...),
	}
	for i := range s.Rows {
		if s.Rows[i].Allocation.Kind == "" {
			s.Rows[i].Allocation = Auto(decimal.Zero)
		}
	}
	s.Reallocate()
	return s
}

// Reallocate fills Auto rows greedily in list order with what is left of
// the total after Manual amounts. Manual rows are never touched.
func (s *Sheet) Reallocate() {
	remaining := s.TotalAmount
	for _, r := range s.Rows {
		if r.Allocation.IsManual() && r.Selected() {
			remaining = remaining.Sub(r.Allocation.Amount)
		}
	}

	for i := range s.Rows {
		r := &s.Rows[i]
		if r.Allocation.IsManual() {
			continue
		}
		if r.Override == SelectionDeselected {
			r.Allocation = Auto(decimal.Zero)
			continue
		}
		applied := decimal.Min(decimal.Max(r.PendingAmount, decimal.Zero), decimal.Max(remaining, decimal.Zero))
		remaining = remaining.Sub(applied)
		r.Allocation = Auto(applied)
	}
}

// SetTotal changes the payment total and reallocates
func (s *Sheet) SetTotal(total decimal.Decimal) {
	s.TotalAmount = total
	s.Reallocate()
}

// Toggle selects or deselects an invoice. Deselecting drops any manual
// amount on it; selecting keeps one.
func (s *Sheet) Toggle(invoiceID uuid.UUID, selected bool) error {
	r, err := s.row(invoiceID)
	if err != nil {
		return err
	}
	if selected {
		r.Override = SelectionSelected
	} else {
		r.Override = SelectionDeselected
		r.Allocation = Auto(decimal.Zero)
	}
	s.Reallocate()
	return nil
}

// SetApplyAmount pins a manual amount on an invoice; the row is selected
// when the amount is positive.
func (s *Sheet) SetApplyAmount(invoiceID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Apply amount cannot be negative")
	}
	r, err := s.row(invoiceID)
	if err != nil {
		return err
	}
	r.Allocation = Manual(amount)
	r.Override = SelectionAuto
	s.Reallocate()
	return nil
}

// ResetOverrides discards manual amounts and toggles, returning to a pure
// greedy allocation
func (s *Sheet) ResetOverrides() {
	for i := range s.Rows {
		s.Rows[i].Allocation = Auto(decimal.Zero)
		s.Rows[i].Override = SelectionAuto
	}
	s.Reallocate()
}

// Used is the sum applied over selected rows
func (s *Sheet) Used() decimal.Decimal {
	used := decimal.Zero
	for _, r := range s.Rows {
		if r.Selected() {
			used = used.Add(r.Allocation.Amount)
		}
	}
	return used
}

// Balance is the part of the total not yet applied; negative when over-applied
func (s *Sheet) Balance() decimal.Decimal {
	return s.TotalAmount.Sub(s.Used())
}

// OverApplied flags more applied than paid. It never blocks saving.
func (s *Sheet) OverApplied() bool {
	return s.Used().GreaterThan(s.TotalAmount)
}

// PaymentDetails lists selected rows with a positive apply amount
func (s *Sheet) PaymentDetails() []PaymentDetail {
	details := make([]PaymentDetail, 0, len(s.Rows))
	for _, r := range s.Rows {
		if r.Selected() && r.Allocation.Amount.IsPositive() {
			details = append(details, PaymentDetail{InvoiceID: r.InvoiceID, Amount: r.Allocation.Amount})
		}
	}
	return details
}

func (s *Sheet) row(invoiceID uuid.UUID) (*SettlementRow, error) {
	for i := range s.Rows {
		if s.Rows[i].InvoiceID == invoiceID {
			return &s.Rows[i], nil
		}
	}
	return nil, shared.NewDomainError("INVOICE_NOT_ON_SHEET", "Invoice is not outstanding for this customer")
}
