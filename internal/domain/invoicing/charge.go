package invoicing

import (
	"strings"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdditionalCharge is a named extra line outside the item table, such as
// packing or freight. It has no quantity/price decomposition.
type AdditionalCharge struct {
	ID         uuid.UUID
	Name       string
	Amount     decimal.Decimal
	TaxPercent decimal.NullDecimal
}

// NewAdditionalCharge creates a charge; taxPercent may be nil for untaxed charges
func NewAdditionalCharge(name string, amount decimal.Decimal, taxPercent *decimal.Decimal) (AdditionalCharge, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AdditionalCharge{}, shared.NewDomainError("INVALID_CHARGE_NAME", "Charge name cannot be empty")
	}
	if len(name) > 100 {
		return AdditionalCharge{}, shared.NewDomainError("INVALID_CHARGE_NAME", "Charge name cannot exceed 100 characters")
	}
	if amount.IsNegative() {
		return AdditionalCharge{}, shared.NewDomainError("INVALID_AMOUNT", "Charge amount cannot be negative")
	}
	c := AdditionalCharge{
		ID:     uuid.New(),
		Name:   name,
		Amount: amount.Round(amountPlaces),
	}
	if taxPercent != nil {
		if taxPercent.IsNegative() || taxPercent.GreaterThan(hundred) {
			return AdditionalCharge{}, shared.NewDomainError("INVALID_TAX", "Tax percentage must be between 0 and 100")
		}
		c.TaxPercent = decimal.NewNullDecimal(*taxPercent)
	}
	return c, nil
}

// TaxRate returns the charge's tax percentage, zero when untaxed
func (c AdditionalCharge) TaxRate() decimal.Decimal {
	return valueOrZero(c.TaxPercent)
}

// TaxAmount is the tax on the charge amount
func (c AdditionalCharge) TaxAmount() decimal.Decimal {
	return PercentOf(c.Amount, c.TaxRate())
}
