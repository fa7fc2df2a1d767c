package invoicing

import (
	"strings"
	"time"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of a sales invoice
type InvoiceStatus string

const (
	InvoiceStatusActive    InvoiceStatus = "ACTIVE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	return s == InvoiceStatusActive || s == InvoiceStatusCancelled
}

func (s InvoiceStatus) String() string {
	return string(s)
}

// PaymentState is derived from total and amount received
type PaymentState string

const (
	PaymentStateUnpaid   PaymentState = "UNPAID"
	PaymentStatePartial  PaymentState = "PARTIAL"
	PaymentStatePaid     PaymentState = "PAID"
	PaymentStateOverpaid PaymentState = "OVERPAID"
)

// MaxPaymentTerms bounds payment terms in days
const MaxPaymentTerms = 365

// ItemSelection carries the catalog values copied onto a row when an item is picked
type ItemSelection struct {
	ItemID      uuid.UUID
	Description string
	HSNCode     string
	Price       decimal.Decimal
	TaxPercent  decimal.NullDecimal
}

// SalesInvoice is the invoice aggregate root. It is the single owned state
// object that row and header edits are applied to; totals are derived on demand.
type SalesInvoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string
	CustomerID     uuid.UUID
	BankID         *uuid.UUID
	InvoiceDate    time.Time
	DueDate        time.Time
	PaymentTerms   int
	SupplyType     SupplyType
	Rows           []LineRow
	Charges        []AdditionalCharge
	BillDiscount   *BillDiscount
	RoundOff       bool
	AmountReceived decimal.Decimal
	Notes          string
	Terms          string
	Status         InvoiceStatus
	CancelledAt    *time.Time
	CancelReason   string
}

// NewSalesInvoice creates a new invoice with no rows
func NewSalesInvoice(tenantID uuid.UUID, invoiceNumber string, customerID uuid.UUID, invoiceDate time.Time, paymentTerms int, supply SupplyType) (*SalesInvoice, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if invoiceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INVOICE_DATE", "Invoice date is required")
	}
	if !supply.IsValid() {
		return nil, shared.NewDomainError("INVALID_SUPPLY_TYPE", "Supply type must be INTRASTATE or INTERSTATE")
	}

	inv := &SalesInvoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerID:          customerID,
		InvoiceDate:         truncateDay(invoiceDate),
		SupplyType:          supply,
		Rows:                make([]LineRow, 0),
		Charges:             make([]AdditionalCharge, 0),
		AmountReceived:      decimal.Zero,
		Status:              InvoiceStatusActive,
	}
	if err := inv.SetPaymentTerms(paymentTerms); err != nil {
		return nil, err
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// NewDraft returns an unsaved, unnumbered invoice used to preview rows and
// totals before anything is submitted
func NewDraft(supply SupplyType) *SalesInvoice {
	if !supply.IsValid() {
		supply = SupplyIntrastate
	}
	return &SalesInvoice{
		SupplyType:     supply,
		Rows:           make([]LineRow, 0),
		Charges:        make([]AdditionalCharge, 0),
		AmountReceived: decimal.Zero,
		Status:         InvoiceStatusActive,
	}
}

// Totals derives the invoice totals from the current state
func (inv *SalesInvoice) Totals() Totals {
	return Compute(TotalsInput{
		Rows:           inv.Rows,
		Charges:        inv.Charges,
		BillDiscount:   inv.BillDiscount,
		SupplyType:     inv.SupplyType,
		RoundOff:       inv.RoundOff,
		AmountReceived: inv.AmountReceived,
	})
}

// SetPaymentTerms sets the terms in days and moves the due date to match
func (inv *SalesInvoice) SetPaymentTerms(days int) error {
	if days < 0 || days > MaxPaymentTerms {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms must be between 0 and 365 days")
	}
	inv.PaymentTerms = days
	inv.DueDate = inv.InvoiceDate.AddDate(0, 0, days)
	return nil
}

// SetDueDate sets the due date and derives the payment terms from it
func (inv *SalesInvoice) SetDueDate(due time.Time) error {
	due = truncateDay(due)
	if due.Before(inv.InvoiceDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before the invoice date")
	}
	days := daysBetween(inv.InvoiceDate, due)
	if days > MaxPaymentTerms {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be more than 365 days after the invoice date")
	}
	inv.DueDate = due
	inv.PaymentTerms = days
	return nil
}

// SetInvoiceDate moves the invoice date, keeping the payment terms
func (inv *SalesInvoice) SetInvoiceDate(date time.Time) error {
	if date.IsZero() {
		return shared.NewDomainError("INVALID_INVOICE_DATE", "Invoice date is required")
	}
	inv.InvoiceDate = truncateDay(date)
	inv.DueDate = inv.InvoiceDate.AddDate(0, 0, inv.PaymentTerms)
	return nil
}

// SetCustomer changes the billed customer and the supply type derived for it
func (inv *SalesInvoice) SetCustomer(customerID uuid.UUID, supply SupplyType) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !supply.IsValid() {
		return shared.NewDomainError("INVALID_SUPPLY_TYPE", "Supply type must be INTRASTATE or INTERSTATE")
	}
	inv.CustomerID = customerID
	inv.SupplyType = supply
	return nil
}

// SetInvoiceNumber renames the invoice
func (inv *SalesInvoice) SetInvoiceNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" || len(number) > 50 {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number must be 1 to 50 characters")
	}
	inv.InvoiceNumber = number
	return nil
}

// SetBank sets the bank shown for payment instructions; nil clears it
func (inv *SalesInvoice) SetBank(bankID *uuid.UUID) {
	inv.BankID = bankID
}

func (inv *SalesInvoice) SetNotes(notes, terms string) {
	inv.Notes = notes
	inv.Terms = terms
}

func (inv *SalesInvoice) SetRoundOff(enabled bool) {
	inv.RoundOff = enabled
}

// AppendRow adds a zeroed row and returns its index
func (inv *SalesInvoice) AppendRow() (int, error) {
	if err := inv.ensureEditable(); err != nil {
		return 0, err
	}
	row := NewLineRow()
	if inv.BillDiscount != nil {
		row.DiscountSource = DiscountSourceBill
	}
	inv.Rows = append(inv.Rows, row)
	return len(inv.Rows) - 1, nil
}

// RemoveRow deletes the row at index
func (inv *SalesInvoice) RemoveRow(index int) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	if err := inv.checkRow(index); err != nil {
		return err
	}
	inv.Rows = append(inv.Rows[:index], inv.Rows[index+1:]...)
	return nil
}

// EditRow applies one field edit to a row. Discount edits are rejected while
// the bill discount is active.
func (inv *SalesInvoice) EditRow(index int, field EditedField, value decimal.Decimal) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	if err := inv.checkRow(index); err != nil {
		return err
	}
	if !field.IsValid() {
		return shared.NewDomainError("INVALID_FIELD", "Unknown row field: "+string(field))
	}
	if (field == EditedDiscountPercent || field == EditedDiscountAmount) && inv.BillDiscount != nil && value.IsPositive() {
		return ErrDiscountConflict
	}

	row := inv.Rows[index].Edit(field, value)
	if inv.BillDiscount != nil {
		row.DiscountSource = DiscountSourceBill
	}
	inv.Rows[index] = row
	return nil
}

// DescribeRow sets the free-text columns of a row
func (inv *SalesInvoice) DescribeRow(index int, description, hsnCode string) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	if err := inv.checkRow(index); err != nil {
		return err
	}
	inv.Rows[index].Description = description
	inv.Rows[index].HSNCode = hsnCode
	return nil
}

// SelectItem fills a row from a catalog item: description, HSN code, price
// and tax percentage, then recomputes the row.
func (inv *SalesInvoice) SelectItem(index int, item ItemSelection) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	if err := inv.checkRow(index); err != nil {
		return err
	}
	if item.ItemID == uuid.Nil {
		return shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}

	row := inv.Rows[index]
	id := item.ItemID
	row.ItemID = &id
	row.Description = item.Description
	row.HSNCode = item.HSNCode
	row.Price = item.Price
	if item.TaxPercent.Valid {
		row.TaxPercent = item.TaxPercent
		row.TaxBasis = BasisPercent
	}
	inv.Rows[index] = row.Recalculate(EditedPrice)
	return nil
}

// ReplaceLines swaps in a complete set of rows, charges and bill discount,
// as done when a submitted payload is applied. Rows are taken as given.
func (inv *SalesInvoice) ReplaceLines(rows []LineRow, charges []AdditionalCharge, bill *BillDiscount) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	if bill != nil {
		if !bill.Type.IsValid() {
			return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Bill discount type must be before_tax or after_tax")
		}
		if hasItemDiscounts(rows) {
			return ErrDiscountConflict
		}
	}

	inv.Rows = make([]LineRow, len(rows))
	for i, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		switch {
		case bill != nil:
			r.DiscountSource = DiscountSourceBill
		case r.HasItemDiscount():
			r.DiscountSource = DiscountSourceItem
		case r.DiscountSource == DiscountSourceBill:
			r.DiscountSource = DiscountSourceUnset
		}
		inv.Rows[i] = r
	}
	inv.Charges = append(make([]AdditionalCharge, 0, len(charges)), charges...)
	inv.BillDiscount = bill
	return nil
}

// AddCharge appends an additional charge
func (inv *SalesInvoice) AddCharge(charge AdditionalCharge) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	inv.Charges = append(inv.Charges, charge)
	return nil
}

// RemoveCharge removes the charge with the given ID
func (inv *SalesInvoice) RemoveCharge(id uuid.UUID) error {
	if err := inv.ensureEditable(); err != nil {
		return err
	}
	for i, c := range inv.Charges {
		if c.ID == id {
			inv.Charges = append(inv.Charges[:i], inv.Charges[i+1:]...)
			return nil
		}
	}
	return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found on invoice")
}

// MarkUpdated records a saved edit session
func (inv *SalesInvoice) MarkUpdated() {
	inv.Touch()
	inv.AddDomainEvent(NewInvoiceUpdatedEvent(inv))
}

// ApplyPayment adds a settled amount. Over-application is allowed and shows
// up as a negative balance.
func (inv *SalesInvoice) ApplyPayment(amount decimal.Decimal) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cannot apply a payment to a cancelled invoice")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	inv.AmountReceived = inv.AmountReceived.Add(amount)
	inv.Touch()
	return nil
}

// ReversePayment takes back a previously applied amount
func (inv *SalesInvoice) ReversePayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal amount must be positive")
	}
	if amount.GreaterThan(inv.AmountReceived) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal exceeds amount received")
	}
	inv.AmountReceived = inv.AmountReceived.Sub(amount)
	inv.Touch()
	return nil
}

// PaymentState derives the settlement state from total and amount received
func (inv *SalesInvoice) PaymentState() PaymentState {
	total := inv.Totals().Total
	switch {
	case !inv.AmountReceived.IsPositive():
		return PaymentStateUnpaid
	case inv.AmountReceived.LessThan(total):
		return PaymentStatePartial
	case inv.AmountReceived.Equal(total):
		return PaymentStatePaid
	default:
		return PaymentStateOverpaid
	}
}

// Cancel voids the invoice. Invoices with receipts must have them reversed first.
func (inv *SalesInvoice) Cancel(reason string) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Invoice is already cancelled")
	}
	if inv.AmountReceived.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel an invoice with payments applied")
	}
	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.Touch()
	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))
	return nil
}

// CanDelete reports whether the invoice can be removed outright
func (inv *SalesInvoice) CanDelete() bool {
	return !inv.AmountReceived.IsPositive()
}

func (inv *SalesInvoice) ensureEditable() error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cancelled invoices cannot be edited")
	}
	return nil
}

func (inv *SalesInvoice) checkRow(index int) error {
	if index < 0 || index >= len(inv.Rows) {
		return shared.NewDomainError("ROW_NOT_FOUND", "Row index out of range")
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(truncateDay(to).Sub(truncateDay(from)).Hours() / 24)
}
