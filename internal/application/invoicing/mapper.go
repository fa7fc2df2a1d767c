package invoicing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dyehouse/backend/internal/application/validation"
	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	amountPlaces  int32 = 2
	percentPlaces int32 = 4
)

// Lines is the row, charge and bill discount state decoded from a payload
type Lines struct {
	Rows         []invoicing.LineRow
	Charges      []invoicing.AdditionalCharge
	BillDiscount *invoicing.BillDiscount
}

// DecodeLines converts wire rows, charges and bill discount to domain values.
// Rows are normalized from their edited tags so client-sent amounts are
// never trusted. Field problems come back as *validation.Error.
func DecodeLines(items []LineItemPayload, charges []ChargePayload, bill *BillDiscountPayload) (Lines, error) {
	verr := &validation.Error{}
	out := Lines{
		Rows:    make([]invoicing.LineRow, 0, len(items)),
		Charges: make([]invoicing.AdditionalCharge, 0, len(charges)),
	}

	for i, p := range items {
		row, err := RowFromPayload(p)
		if err != nil {
			addPrefixed(verr, fmt.Sprintf("items[%d]", i), err)
			continue
		}
		out.Rows = append(out.Rows, row.Normalize())
	}

	for i, p := range charges {
		c, err := ChargeFromPayload(p)
		if err != nil {
			addPrefixed(verr, fmt.Sprintf("additional_charges[%d]", i), err)
			continue
		}
		out.Charges = append(out.Charges, c)
	}

	if bill != nil {
		out.BillDiscount = BillDiscountFromPayload(*bill)
	}
	return out, verr.OrNil()
}

// RowFromPayload converts a wire row without recomputing it. Quantities, prices
// and percentages are held at 4 places and amounts at 2, matching storage.
func RowFromPayload(p LineItemPayload) (invoicing.LineRow, error) {
	row := invoicing.NewLineRow()
	if p.ID != "" {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return invoicing.LineRow{}, invalidUUID("id")
		}
		row.ID = id
	}
	if p.ItemID != nil && *p.ItemID != "" {
		id, err := uuid.Parse(*p.ItemID)
		if err != nil {
			return invoicing.LineRow{}, invalidUUID("item_id")
		}
		row.ItemID = &id
	}
	row.Description = strings.TrimSpace(p.Description)
	row.HSNCode = strings.TrimSpace(p.HSNCode)
	row.Quantity = valueobject.DecimalFromFloat(p.Quantity).Round(percentPlaces)
	row.Price = valueobject.DecimalFromFloat(p.Price).Round(percentPlaces)
	row.DiscountPercent = nullFromPtr(p.DiscountPercent, percentPlaces)
	row.DiscountAmount = nullFromPtr(p.DiscountAmount, amountPlaces)
	row.TaxPercent = nullFromPtr(p.TaxPercent, percentPlaces)
	row.TaxAmount = nullFromPtr(p.TaxAmount, amountPlaces)
	row.Amount = valueobject.DecimalFromFloat(p.Amount).Round(amountPlaces)
	row.DiscountBasis = invoicing.Basis(p.DiscountEdited)
	row.TaxBasis = invoicing.Basis(p.TaxEdited)
	row.DiscountSource = invoicing.DiscountSource(p.DiscountSource)
	return row, nil
}

// RowToPayload renders a row with amounts at 2 and percentages at 4 places
func RowToPayload(r invoicing.LineRow) LineItemPayload {
	p := LineItemPayload{
		ID:              r.ID.String(),
		Description:     r.Description,
		HSNCode:         r.HSNCode,
		Quantity:        r.Quantity.Round(percentPlaces).InexactFloat64(),
		Price:           r.Price.Round(percentPlaces).InexactFloat64(),
		DiscountPercent: ptrFromNull(r.DiscountPercent, percentPlaces),
		DiscountAmount:  ptrFromNull(r.DiscountAmount, amountPlaces),
		TaxPercent:      ptrFromNull(r.TaxPercent, percentPlaces),
		TaxAmount:       ptrFromNull(r.TaxAmount, amountPlaces),
		Amount:          r.Amount.Round(amountPlaces).InexactFloat64(),
		DiscountEdited:  string(r.DiscountBasis),
		TaxEdited:       string(r.TaxBasis),
		DiscountSource:  string(r.DiscountSource),
	}
	if r.ItemID != nil {
		s := r.ItemID.String()
		p.ItemID = &s
	}
	return p
}

// ChargeFromPayload converts and validates a wire charge
func ChargeFromPayload(p ChargePayload) (invoicing.AdditionalCharge, error) {
	var taxPercent *decimal.Decimal
	if p.TaxPercent != nil {
		t := valueobject.DecimalFromFloat(*p.TaxPercent).Round(percentPlaces)
		taxPercent = &t
	}
	c, err := invoicing.NewAdditionalCharge(p.Name, valueobject.DecimalFromFloat(p.Amount).Round(amountPlaces), taxPercent)
	if err != nil {
		return invoicing.AdditionalCharge{}, err
	}
	if p.ID != "" {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return invoicing.AdditionalCharge{}, invalidUUID("id")
		}
		c.ID = id
	}
	return c, nil
}

// ChargeToPayload renders a charge
func ChargeToPayload(c invoicing.AdditionalCharge) ChargePayload {
	return ChargePayload{
		ID:         c.ID.String(),
		Name:       c.Name,
		Amount:     c.Amount.Round(amountPlaces).InexactFloat64(),
		TaxPercent: ptrFromNull(c.TaxPercent, percentPlaces),
	}
}

// BillDiscountFromPayload converts a wire bill discount. The edited side
// falls back to whichever value is present, preferring the percentage.
func BillDiscountFromPayload(p BillDiscountPayload) *invoicing.BillDiscount {
	bd := &invoicing.BillDiscount{
		Type:    invoicing.BillDiscountType(p.Type),
		Percent: nullFromPtr(p.Percent, percentPlaces),
		Amount:  nullFromPtr(p.Amount, amountPlaces),
		Basis:   invoicing.Basis(p.Edited),
	}
	if bd.Basis == invoicing.BasisUnset {
		switch {
		case bd.Percent.Valid:
			bd.Basis = invoicing.BasisPercent
		case bd.Amount.Valid:
			bd.Basis = invoicing.BasisAmount
		}
	}
	return bd
}

// BillDiscountToPayload renders the bill discount with its resolved values
// taken from totals, so percent and amount always agree on the wire
func BillDiscountToPayload(bd *invoicing.BillDiscount, t invoicing.Totals) *BillDiscountPayload {
	if bd == nil {
		return nil
	}
	pct := t.BillDiscountPercent.Round(percentPlaces).InexactFloat64()
	amt := t.BillDiscountAmount.Round(amountPlaces).InexactFloat64()
	return &BillDiscountPayload{
		Type:    string(bd.Type),
		Percent: &pct,
		Amount:  &amt,
		Edited:  string(bd.Basis),
	}
}

// ToTotalsResponse renders derived totals
func ToTotalsResponse(t invoicing.Totals) TotalsResponse {
	groups := make([]TaxGroupResponse, len(t.TaxGroups))
	for i, g := range t.TaxGroups {
		groups[i] = TaxGroupResponse{
			Rate:    g.Rate.Round(percentPlaces).InexactFloat64(),
			Taxable: money(g.Taxable),
			CGST:    money(g.CGST),
			SGST:    money(g.SGST),
			IGST:    money(g.IGST),
			Total:   money(g.Total()),
		}
	}
	return TotalsResponse{
		GrossAmount:         money(t.GrossAmount),
		ItemDiscountTotal:   money(t.ItemDiscountTotal),
		LineTotal:           money(t.LineTotal),
		ChargeTotal:         money(t.ChargeTotal),
		Subtotal:            money(t.Subtotal),
		BillDiscountType:    string(t.BillDiscountType),
		BillDiscountPercent: t.BillDiscountPercent.Round(percentPlaces).InexactFloat64(),
		BillDiscountAmount:  money(t.BillDiscountAmount),
		TaxableValue:        money(t.TaxableValue),
		TaxGroups:           groups,
		CGST:                money(t.CGST),
		SGST:                money(t.SGST),
		IGST:                money(t.IGST),
		TaxTotal:            money(t.TaxTotal),
		RoundOff:            money(t.RoundOff),
		Total:               money(t.Total),
		AmountReceived:      money(t.AmountReceived),
		Balance:             money(t.Balance),
	}
}

// ToInvoiceResponse hydrates an invoice for clients
func ToInvoiceResponse(inv *invoicing.SalesInvoice) InvoiceResponse {
	totals := inv.Totals()
	items := make([]LineItemPayload, len(inv.Rows))
	for i, r := range inv.Rows {
		items[i] = RowToPayload(r)
	}
	charges := make([]ChargePayload, len(inv.Charges))
	for i, c := range inv.Charges {
		charges[i] = ChargeToPayload(c)
	}
	return InvoiceResponse{
		ID:                inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		CustomerID:        inv.CustomerID,
		BankID:            inv.BankID,
		InvoiceDate:       inv.InvoiceDate.Format(DateLayout),
		DueDate:           inv.DueDate.Format(DateLayout),
		PaymentTerms:      inv.PaymentTerms,
		SupplyType:        string(inv.SupplyType),
		RoundOff:          inv.RoundOff,
		Notes:             inv.Notes,
		Terms:             inv.Terms,
		Items:             items,
		AdditionalCharges: charges,
		BillDiscount:      BillDiscountToPayload(inv.BillDiscount, totals),
		Status:            string(inv.Status),
		PaymentState:      string(inv.PaymentState()),
		CancelReason:      inv.CancelReason,
		Totals:            ToTotalsResponse(totals),
		Version:           inv.Version,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}

// Payload turns a hydrated invoice back into a submission body
func (r InvoiceResponse) Payload() InvoicePayload {
	terms := r.PaymentTerms
	p := InvoicePayload{
		InvoiceNumber:     r.InvoiceNumber,
		CustomerID:        r.CustomerID.String(),
		InvoiceDate:       r.InvoiceDate,
		DueDate:           r.DueDate,
		PaymentTerms:      &terms,
		RoundOff:          r.RoundOff,
		Notes:             r.Notes,
		Terms:             r.Terms,
		Items:             r.Items,
		AdditionalCharges: r.AdditionalCharges,
		BillDiscount:      r.BillDiscount,
		Version:           r.Version,
	}
	if r.BankID != nil {
		s := r.BankID.String()
		p.BankID = &s
	}
	return p
}

// ToInvoiceListResponse renders the compact list form
func ToInvoiceListResponse(inv *invoicing.SalesInvoice) InvoiceListResponse {
	totals := inv.Totals()
	return InvoiceListResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		CustomerID:     inv.CustomerID,
		InvoiceDate:    inv.InvoiceDate.Format(DateLayout),
		DueDate:        inv.DueDate.Format(DateLayout),
		Total:          money(totals.Total),
		AmountReceived: money(totals.AmountReceived),
		Balance:        money(totals.Balance),
		Status:         string(inv.Status),
		PaymentState:   string(inv.PaymentState()),
	}
}

// ParseDate parses a wire date; the empty string gives the zero time
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func invalidUUID(field string) error {
	verr := &validation.Error{}
	verr.Add(field, "Invalid UUID format")
	return verr
}

// addPrefixed files err under prefix: field errors keep their own names,
// domain errors land on the prefix itself
func addPrefixed(verr *validation.Error, prefix string, err error) {
	var fields *validation.Error
	if errors.As(err, &fields) {
		for _, f := range fields.Fields {
			verr.Add(prefix+"."+f.Field, f.Message)
		}
		return
	}
	verr.Add(prefix, err.Error())
}

func money(d decimal.Decimal) float64 {
	return d.Round(amountPlaces).InexactFloat64()
}

// nullFromPtr rounds to the column scale so a reload reproduces the saved row
func nullFromPtr(f *float64, places int32) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(valueobject.DecimalFromFloat(*f).Round(places))
}

func ptrFromNull(n decimal.NullDecimal, places int32) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Decimal.Round(places).InexactFloat64()
	return &f
}
