package settlement

import "time"

// DateLayout is the wire format of payment dates
const DateLayout = "2006-01-02"

// PaymentDetailPayload applies part of a payment to one invoice
type PaymentDetailPayload struct {
	InvoiceID string  `json:"invoice_id" validate:"required,uuid"`
	Amount    float64 `json:"amount" validate:"gt=0"`
}

// PaymentPayload is the payment submission body. Details list only the
// invoices that were selected with a positive apply amount.
type PaymentPayload struct {
	PaymentDate    string                 `json:"payment_date" validate:"required,datetime=2006-01-02"`
	CustomerID     string                 `json:"customer_id" validate:"required,uuid"`
	PaymentType    string                 `json:"payment_type" validate:"required,oneof=CASH CHEQUE BANK_TRANSFER UPI"`
	ReferenceNo    string                 `json:"reference_no" validate:"required_if=PaymentType CHEQUE,max=100"`
	TotalAmount    float64                `json:"total_amount" validate:"gt=0"`
	PaymentDetails []PaymentDetailPayload `json:"payment_details" validate:"dive"`
}

// AllocationRowInput carries the user's overrides for one outstanding
// invoice. A nil ApplyAmount leaves the row to the allocator; a nil
// Selected leaves selection implicit.
type AllocationRowInput struct {
	InvoiceID   string   `json:"invoice_id" validate:"required,uuid"`
	ApplyAmount *float64 `json:"apply_amount" validate:"omitempty,gte=0"`
	Selected    *bool    `json:"selected"`
}

// AllocateRequest runs the allocator over a customer's outstanding invoices
type AllocateRequest struct {
	CustomerID  string               `json:"customer_id" validate:"required,uuid"`
	TotalAmount float64              `json:"total_amount" validate:"gte=0"`
	Rows        []AllocationRowInput `json:"rows" validate:"dive"`
}

// SettlementRowResponse is one outstanding invoice on the payment sheet
type SettlementRowResponse struct {
	InvoiceID     string  `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date"`
	InvoiceTotal  float64 `json:"invoice_total"`
	PendingAmount float64 `json:"pending_amount"`
	ApplyAmount   float64 `json:"apply_amount"`
	Remaining     float64 `json:"remaining"`
	Selected      bool    `json:"selected"`
	Manual        bool    `json:"manual"`
	Excess        bool    `json:"excess"`
}

// SheetResponse is the allocator state for one customer
type SheetResponse struct {
	CustomerID     string                  `json:"customer_id"`
	TotalAmount    float64                 `json:"total_amount"`
	Used           float64                 `json:"used"`
	Balance        float64                 `json:"balance"`
	OverApplied    bool                    `json:"over_applied"`
	Rows           []SettlementRowResponse `json:"rows"`
	PaymentDetails []PaymentDetailPayload  `json:"payment_details"`
}

// PaymentResponse represents a recorded payment in API responses
type PaymentResponse struct {
	ID                string                 `json:"id"`
	CustomerID        string                 `json:"customer_id"`
	PaymentDate       string                 `json:"payment_date"`
	PaymentType       string                 `json:"payment_type"`
	ReferenceNo       string                 `json:"reference_no,omitempty"`
	TotalAmount       float64                `json:"total_amount"`
	AllocatedAmount   float64                `json:"allocated_amount"`
	UnallocatedAmount float64                `json:"unallocated_amount"`
	OverApplied       bool                   `json:"over_applied"`
	PaymentDetails    []PaymentDetailPayload `json:"payment_details"`
	Status            string                 `json:"status"`
	CancelReason      string                 `json:"cancel_reason,omitempty"`
	CancelledAt       *time.Time             `json:"cancelled_at,omitempty"`
	Version           int                    `json:"version"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// CancelPaymentRequest represents a request to cancel a payment
type CancelPaymentRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// PaymentListFilter defines filtering options for payment list queries
type PaymentListFilter struct {
	CustomerID  string `form:"customer_id" binding:"omitempty,uuid"`
	Status      string `form:"status" binding:"omitempty,oneof=RECORDED CANCELLED"`
	PaymentType string `form:"payment_type" binding:"omitempty,oneof=CASH CHEQUE BANK_TRANSFER UPI"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by" binding:"omitempty,oneof=payment_date total_amount created_at"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
