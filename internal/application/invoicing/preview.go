package invoicing

import (
	"context"

	"github.com/dyehouse/backend/internal/application/validation"
	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// editedItem is the pseudo-field for picking a catalog item on a row
const editedItem = "item"

// Preview computes rows and totals for an unsaved invoice
func (s *InvoiceService) Preview(ctx context.Context, tenantID uuid.UUID, req PreviewRequest) (*PreviewResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	supply := invoicing.SupplyType(req.SupplyType)
	if req.CustomerID != "" {
		customer, err := s.loadCustomer(ctx, tenantID, req.CustomerID)
		if err != nil {
			return nil, err
		}
		supply = invoicing.SupplyTypeFor(s.config.CompanyStateCode, customer.StateCode)
	}

	draft := invoicing.NewDraft(supply)
	draft.SetRoundOff(req.RoundOff)
	draft.AmountReceived = valueobject.DecimalFromFloat(req.AmountReceived)

	lines, err := DecodeLines(req.Items, req.AdditionalCharges, req.BillDiscount)
	if err != nil {
		return nil, err
	}
	if err := draft.ReplaceLines(lines.Rows, lines.Charges, lines.BillDiscount); err != nil {
		return nil, err
	}

	resp := ToInvoiceResponse(draft)
	return &PreviewResponse{
		SupplyType:        resp.SupplyType,
		Items:             resp.Items,
		AdditionalCharges: resp.AdditionalCharges,
		BillDiscount:      resp.BillDiscount,
		Totals:            resp.Totals,
	}, nil
}

// RecalculateRow applies one field edit to a row and returns the consistent
// row. The edited value is read from the row itself. While a bill discount
// is active, a positive row discount is rejected with DISCOUNT_CONFLICT.
func (s *InvoiceService) RecalculateRow(ctx context.Context, tenantID uuid.UUID, req RecalculateRowRequest) (*LineItemPayload, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	row, err := RowFromPayload(req.Row)
	if err != nil {
		verr := &validation.Error{}
		verr.Add("row", err.Error())
		return nil, verr
	}

	draft := invoicing.NewDraft(invoicing.SupplyIntrastate)
	if err := draft.ReplaceLines([]invoicing.LineRow{row}, nil, nil); err != nil {
		return nil, err
	}
	if req.BillDiscountActive {
		if err := draft.ActivateBillDiscount(invoicing.BillDiscountBeforeTax); err != nil {
			return nil, err
		}
	}

	if req.EditedField == editedItem {
		if err := s.selectItem(ctx, tenantID, draft, req.ItemID); err != nil {
			return nil, err
		}
	} else {
		field := invoicing.EditedField(req.EditedField)
		if err := draft.EditRow(0, field, editedValue(row, field)); err != nil {
			return nil, err
		}
	}

	out := RowToPayload(draft.Rows[0])
	return &out, nil
}

func (s *InvoiceService) selectItem(ctx context.Context, tenantID uuid.UUID, draft *invoicing.SalesInvoice, rawItemID string) error {
	itemID, err := uuid.Parse(rawItemID)
	if err != nil {
		verr := &validation.Error{}
		verr.Add("item_id", "This field is required")
		return verr
	}
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return err
	}
	return draft.SelectItem(0, invoicing.ItemSelection{
		ItemID:      item.ID,
		Description: item.Name,
		HSNCode:     item.HSNCode,
		Price:       item.DefaultPrice,
		TaxPercent:  item.TaxPercent,
	})
}

// editedValue reads the just-edited value off the row
func editedValue(r invoicing.LineRow, field invoicing.EditedField) decimal.Decimal {
	pick := func(n decimal.NullDecimal) decimal.Decimal {
		if !n.Valid {
			return decimal.Zero
		}
		return n.Decimal
	}
	switch field {
	case invoicing.EditedQuantity:
		return r.Quantity
	case invoicing.EditedPrice:
		return r.Price
	case invoicing.EditedDiscountPercent:
		return pick(r.DiscountPercent)
	case invoicing.EditedDiscountAmount:
		return pick(r.DiscountAmount)
	case invoicing.EditedTaxPercent:
		return pick(r.TaxPercent)
	case invoicing.EditedTaxAmount:
		return pick(r.TaxAmount)
	default:
		return decimal.Zero
	}
}
