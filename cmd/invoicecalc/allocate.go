package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	settlementapp "github.com/dyehouse/backend/internal/application/settlement"
	"github.com/dyehouse/backend/internal/application/validation"
	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/dyehouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// allocateInput is a payment total and the customer's outstanding invoices
type allocateInput struct {
	TotalAmount float64            `json:"total_amount" validate:"gte=0"`
	Invoices    []outstandingInput `json:"invoices" validate:"dive"`
}

type outstandingInput struct {
	InvoiceID     string   `json:"invoice_id" validate:"omitempty,uuid"`
	InvoiceNumber string   `json:"invoice_number" validate:"required"`
	InvoiceDate   string   `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	InvoiceTotal  float64  `json:"invoice_total" validate:"gte=0"`
	PendingAmount float64  `json:"pending_amount"`
	ApplyAmount   *float64 `json:"apply_amount" validate:"omitempty,gte=0"`
	Selected      *bool    `json:"selected"`
}

func newAllocateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "allocate [file]",
		Short: "Spread a payment over outstanding invoices, oldest first",
		Long: `allocate fills invoices oldest first with the payment total. An invoice
with apply_amount keeps that amount; selected=false leaves it out.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in allocateInput
			if err := readInput(cmd, args, &in); err != nil {
				return err
			}
			if err := validation.Struct(in); err != nil {
				return describe(err)
			}
			rows, err := sheetRows(in.Invoices)
			if err != nil {
				return err
			}

			sheet := settlement.NewSheet(uuid.Nil, valueobject.DecimalFromFloat(in.TotalAmount), rows)
			if sheet.OverApplied() {
				opts.log.Warn("manual amounts exceed the payment total",
					zap.String("balance", sheet.Balance().StringFixed(2)),
				)
			}
			return opts.print(cmd, settlementapp.ToSheetResponse(sheet))
		},
	}
}

// sheetRows orders invoices oldest first, then by number
func sheetRows(invoices []outstandingInput) ([]settlement.SettlementRow, error) {
	rows := make([]settlement.SettlementRow, 0, len(invoices))
	for _, inv := range invoices {
		id := uuid.New()
		if inv.InvoiceID != "" {
			id = uuid.MustParse(inv.InvoiceID)
		}
		date, err := time.ParseInLocation(settlementapp.DateLayout, inv.InvoiceDate, time.UTC)
		if err != nil {
			return nil, err
		}
		row := settlement.SettlementRow{
			InvoiceID:     id,
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   date,
			InvoiceTotal:  valueobject.DecimalFromFloat(inv.InvoiceTotal),
			PendingAmount: valueobject.DecimalFromFloat(inv.PendingAmount),
		}
		if inv.ApplyAmount != nil {
			row.Allocation = settlement.Manual(valueobject.DecimalFromFloat(*inv.ApplyAmount))
		}
		if inv.Selected != nil {
			if *inv.Selected {
				row.Override = settlement.SelectionSelected
			} else {
				row.Override = settlement.SelectionDeselected
				row.Allocation = settlement.Auto(valueobject.DecimalFromFloat(0))
			}
		}
		rows = append(rows, row)
	}
	// same-day invoices keep their input order
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].InvoiceDate.Before(rows[j].InvoiceDate)
	})
	return rows, nil
}

// describe flattens field errors into one readable error
func describe(err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		parts := make([]string, len(verr.Fields))
		for i, f := range verr.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		return fmt.Errorf("invalid input: %s", strings.Join(parts, "; "))
	}
	if de, ok := shared.AsDomainError(err); ok {
		return fmt.Errorf("%s: %s", de.Code, de.Message)
	}
	return err
}
