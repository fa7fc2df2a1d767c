package invoicing

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for invoice, due and payment dates
const DateLayout = "2006-01-02"

// =============================================================================
// Submission payload
// =============================================================================

// LineItemPayload is one item row as exchanged with clients. Numbers travel
// as JSON numbers; unset discount and tax fields are explicit nulls.
type LineItemPayload struct {
	ID              string   `json:"id,omitempty" validate:"omitempty,uuid"`
	ItemID          *string  `json:"item_id" validate:"omitempty,uuid"`
	Description     string   `json:"description" validate:"max=500"`
	HSNCode         string   `json:"hsn_code" validate:"max=8"`
	Quantity        float64  `json:"quantity" validate:"gte=0"`
	Price           float64  `json:"price" validate:"gte=0"`
	DiscountPercent *float64 `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	DiscountAmount  *float64 `json:"discount_amount" validate:"omitempty,gte=0"`
	TaxPercent      *float64 `json:"tax_percent" validate:"omitempty,gte=0,lte=100"`
	TaxAmount       *float64 `json:"tax_amount" validate:"omitempty,gte=0"`
	Amount          float64  `json:"amount"`
	DiscountEdited  string   `json:"discount_edited,omitempty" validate:"omitempty,oneof=percent amount"`
	TaxEdited       string   `json:"tax_edited,omitempty" validate:"omitempty,oneof=percent amount"`
	DiscountSource  string   `json:"discount_source,omitempty" validate:"omitempty,oneof=item bill"`
}

// ChargePayload is an additional charge such as packing or freight
type ChargePayload struct {
	ID         string   `json:"id,omitempty" validate:"omitempty,uuid"`
	Name       string   `json:"name" validate:"required,max=100"`
	Amount     float64  `json:"amount" validate:"gte=0"`
	TaxPercent *float64 `json:"tax_percent" validate:"omitempty,gte=0,lte=100"`
}

// BillDiscountPayload is the invoice-level discount
type BillDiscountPayload struct {
	Type    string   `json:"type" validate:"required,oneof=before_tax after_tax"`
	Percent *float64 `json:"percent" validate:"omitempty,gte=0,lte=100"`
	Amount  *float64 `json:"amount" validate:"omitempty,gte=0"`
	Edited  string   `json:"edited,omitempty" validate:"omitempty,oneof=percent amount"`
}

// InvoicePayload is the create/update request body. Its shape matches the
// hydrated invoice so a fetched invoice can be submitted back unchanged.
type InvoicePayload struct {
	InvoiceNumber     string               `json:"invoice_number" validate:"required,max=50"`
	CustomerID        string               `json:"customer_id" validate:"required,uuid"`
	BankID            *string              `json:"bank_id" validate:"omitempty,uuid"`
	InvoiceDate       string               `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	DueDate           string               `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PaymentTerms      *int                 `json:"payment_terms" validate:"omitempty,gte=0,lte=365"`
	RoundOff          bool                 `json:"round_off"`
	Notes             string               `json:"notes" validate:"max=2000"`
	Terms             string               `json:"terms" validate:"max=2000"`
	Items             []LineItemPayload    `json:"items" validate:"min=1,dive"`
	AdditionalCharges []ChargePayload      `json:"additional_charges" validate:"dive"`
	BillDiscount      *BillDiscountPayload `json:"bill_discount"`
	Version           int                  `json:"version,omitempty" validate:"gte=0"`
}

// PreviewRequest computes rows and totals without saving anything. The
// supply type comes from the customer when one is given.
type PreviewRequest struct {
	CustomerID        string               `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	SupplyType        string               `json:"supply_type,omitempty" validate:"omitempty,oneof=INTRASTATE INTERSTATE"`
	RoundOff          bool                 `json:"round_off"`
	AmountReceived    float64              `json:"amount_received" validate:"gte=0"`
	Items             []LineItemPayload    `json:"items" validate:"dive"`
	AdditionalCharges []ChargePayload      `json:"additional_charges" validate:"dive"`
	BillDiscount      *BillDiscountPayload `json:"bill_discount"`
}

// RecalculateRowRequest recomputes one row after a single field edit.
// EditedField "item" fills the row from the catalog item ItemID.
type RecalculateRowRequest struct {
	Row                LineItemPayload `json:"row"`
	EditedField        string          `json:"edited_field" validate:"required,oneof=quantity price discount_percent discount_amount tax_percent tax_amount item"`
	ItemID             string          `json:"item_id,omitempty" validate:"omitempty,uuid"`
	BillDiscountActive bool            `json:"bill_discount_active"`
}

// CancelInvoiceRequest carries the cancellation reason
type CancelInvoiceRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// InvoiceListFilter represents list query parameters
type InvoiceListFilter struct {
	Search     string `form:"search"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=ACTIVE CANCELLED"`
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Responses
// =============================================================================

// TaxGroupResponse is one merged tax rate
type TaxGroupResponse struct {
	Rate    float64 `json:"rate"`
	Taxable float64 `json:"taxable"`
	CGST    float64 `json:"cgst"`
	SGST    float64 `json:"sgst"`
	IGST    float64 `json:"igst"`
	Total   float64 `json:"total"`
}

// TotalsResponse carries the derived invoice figures
type TotalsResponse struct {
	GrossAmount         float64            `json:"gross_amount"`
	ItemDiscountTotal   float64            `json:"item_discount_total"`
	LineTotal           float64            `json:"line_total"`
	ChargeTotal         float64            `json:"charge_total"`
	Subtotal            float64            `json:"subtotal"`
	BillDiscountType    string             `json:"bill_discount_type,omitempty"`
	BillDiscountPercent float64            `json:"bill_discount_percent"`
	BillDiscountAmount  float64            `json:"bill_discount_amount"`
	TaxableValue        float64            `json:"taxable_value"`
	TaxGroups           []TaxGroupResponse `json:"tax_groups"`
	CGST                float64            `json:"cgst"`
	SGST                float64            `json:"sgst"`
	IGST                float64            `json:"igst"`
	TaxTotal            float64            `json:"tax_total"`
	RoundOff            float64            `json:"round_off"`
	Total               float64            `json:"total"`
	AmountReceived      float64            `json:"amount_received"`
	Balance             float64            `json:"balance"`
}

// InvoiceResponse is the hydrated invoice: the submission payload fields
// plus identity, status and derived totals
type InvoiceResponse struct {
	ID                uuid.UUID            `json:"id"`
	InvoiceNumber     string               `json:"invoice_number"`
	CustomerID        uuid.UUID            `json:"customer_id"`
	BankID            *uuid.UUID           `json:"bank_id"`
	InvoiceDate       string               `json:"invoice_date"`
	DueDate           string               `json:"due_date"`
	PaymentTerms      int                  `json:"payment_terms"`
	SupplyType        string               `json:"supply_type"`
	RoundOff          bool                 `json:"round_off"`
	Notes             string               `json:"notes"`
	Terms             string               `json:"terms"`
	Items             []LineItemPayload    `json:"items"`
	AdditionalCharges []ChargePayload      `json:"additional_charges"`
	BillDiscount      *BillDiscountPayload `json:"bill_discount"`
	Status            string               `json:"status"`
	PaymentState      string               `json:"payment_state"`
	CancelReason      string               `json:"cancel_reason,omitempty"`
	Totals            TotalsResponse       `json:"totals"`
	Version           int                  `json:"version"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// InvoiceListResponse is the compact form used in lists
type InvoiceListResponse struct {
	ID             uuid.UUID `json:"id"`
	InvoiceNumber  string    `json:"invoice_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	InvoiceDate    string    `json:"invoice_date"`
	DueDate        string    `json:"due_date"`
	Total          float64   `json:"total"`
	AmountReceived float64   `json:"amount_received"`
	Balance        float64   `json:"balance"`
	Status         string    `json:"status"`
	PaymentState   string    `json:"payment_state"`
}

// PreviewResponse is the computed view of a PreviewRequest
type PreviewResponse struct {
	SupplyType        string               `json:"supply_type"`
	Items             []LineItemPayload    `json:"items"`
	AdditionalCharges []ChargePayload      `json:"additional_charges"`
	BillDiscount      *BillDiscountPayload `json:"bill_discount"`
	Totals            TotalsResponse       `json:"totals"`
}
