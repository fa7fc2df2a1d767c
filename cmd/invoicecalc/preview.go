package main

import (
	"context"
	"errors"

	invoicingapp "github.com/dyehouse/backend/internal/application/invoicing"
	"github.com/dyehouse/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	var companyState string
	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Compute rows and totals for an invoice",
		Example: `  # totals for an interstate invoice
  invoicecalc preview invoice.json

  echo '{"supply_type":"INTRASTATE","items":[...]}' | invoicecalc preview`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req invoicingapp.PreviewRequest
			if err := readInput(cmd, args, &req); err != nil {
				return err
			}
			if req.CustomerID != "" {
				return errors.New("customer_id needs the server; set supply_type instead")
			}
			if !cmd.Flags().Changed("company-state") {
				// DYE_APP_COMPANY_STATE_CODE, config.toml or .env may set it
				if cfg, err := config.Load(); err == nil {
					companyState = cfg.App.CompanyStateCode
				} else {
					opts.log.Debug("using default company state", zap.Error(err))
				}
			}
			if req.SupplyType == "" {
				req.SupplyType = "INTRASTATE"
			}

			// no customer lookup happens without customer_id
			svc := invoicingapp.NewInvoiceService(nil, nil, nil, invoicingapp.Config{
				CompanyStateCode: companyState,
			}, opts.log)
			out, err := svc.Preview(context.Background(), uuid.Nil, req)
			if err != nil {
				return describe(err)
			}
			opts.log.Debug("preview computed",
				zap.Int("items", len(out.Items)),
				zap.Float64("total", out.Totals.Total),
			)
			return opts.print(cmd, out)
		},
	}
	cmd.Flags().StringVar(&companyState, "company-state", "33", "Seller GST state code")
	return cmd
}
