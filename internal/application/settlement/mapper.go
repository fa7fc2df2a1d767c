package settlement

import (
	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/dyehouse/backend/internal/domain/shared/valueobject"
)

// rowsFromInvoices turns outstanding invoices into sheet rows, keeping their order
func rowsFromInvoices(invoices []invoicing.SalesInvoice) []settlement.SettlementRow {
	rows := make([]settlement.SettlementRow, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		totals := inv.Totals()
		rows[i] = settlement.SettlementRow{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   inv.InvoiceDate,
			InvoiceTotal:  totals.Total,
			PendingAmount: totals.Balance,
		}
	}
	return rows
}

// ToSheetResponse converts the allocator state into its response form
func ToSheetResponse(sheet *settlement.Sheet) SheetResponse {
	resp := SheetResponse{
		CustomerID:     sheet.CustomerID.String(),
		TotalAmount:    valueobject.AmountFloat(sheet.TotalAmount),
		Used:           valueobject.AmountFloat(sheet.Used()),
		Balance:        valueobject.AmountFloat(sheet.Balance()),
		OverApplied:    sheet.OverApplied(),
		Rows:           make([]SettlementRowResponse, len(sheet.Rows)),
		PaymentDetails: toDetailPayloads(sheet.PaymentDetails()),
	}
	for i, r := range sheet.Rows {
		resp.Rows[i] = SettlementRowResponse{
			InvoiceID:     r.InvoiceID.String(),
			InvoiceNumber: r.InvoiceNumber,
			InvoiceDate:   r.InvoiceDate.Format(DateLayout),
			InvoiceTotal:  valueobject.AmountFloat(r.InvoiceTotal),
			PendingAmount: valueobject.AmountFloat(r.PendingAmount),
			ApplyAmount:   valueobject.AmountFloat(r.ApplyAmount()),
			Remaining:     valueobject.AmountFloat(r.Remaining()),
			Selected:      r.Selected(),
			Manual:        r.Allocation.IsManual(),
			Excess:        r.Excess(),
		}
	}
	return resp
}

// ToPaymentResponse converts a payment aggregate into its response form
func ToPaymentResponse(p *settlement.CustomerPayment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID.String(),
		CustomerID:        p.CustomerID.String(),
		PaymentDate:       p.PaymentDate.Format(DateLayout),
		PaymentType:       p.PaymentType.String(),
		ReferenceNo:       p.ReferenceNo,
		TotalAmount:       valueobject.AmountFloat(p.TotalAmount),
		AllocatedAmount:   valueobject.AmountFloat(p.AllocatedAmount()),
		UnallocatedAmount: valueobject.AmountFloat(p.UnallocatedAmount()),
		OverApplied:       p.OverApplied(),
		PaymentDetails:    toDetailPayloads(p.Details),
		Status:            p.Status.String(),
		CancelReason:      p.CancelReason,
		CancelledAt:       p.CancelledAt,
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toDetailPayloads(details []settlement.PaymentDetail) []PaymentDetailPayload {
	out := make([]PaymentDetailPayload, len(details))
	for i, det := range details {
		out[i] = PaymentDetailPayload{
			InvoiceID: det.InvoiceID.String(),
			Amount:    valueobject.AmountFloat(det.Amount),
		}
	}
	return out
}
