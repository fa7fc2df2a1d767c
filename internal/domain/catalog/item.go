package catalog

import (
	"regexp"
	"strings"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the status of an item
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
)

var hsnPattern = regexp.MustCompile(`^[0-9]{4}([0-9]{2}){0,2}$`)

// Item is a billable processing line, for example a yarn count dyed in a
// given shade. Selecting it on an invoice row copies HSN, price and tax.
type Item struct {
	shared.TenantAggregateRoot
	Code         string
	Name         string
	HSNCode      string
	Unit         string
	DefaultPrice decimal.Decimal
	TaxPercent   decimal.NullDecimal
	Status       ItemStatus
}

// NewItem creates a new active item
func NewItem(tenantID uuid.UUID, code, name, unit string) (*Item, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Item code must be 1 to 50 characters")
	}
	it := &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		DefaultPrice:        decimal.Zero,
		Status:              ItemStatusActive,
	}
	if err := it.Rename(name, unit); err != nil {
		return nil, err
	}
	return it, nil
}

// Rename sets the display name and unit
func (it *Item) Rename(name, unit string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Item name must be 1 to 200 characters")
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = "KG"
	}
	it.Name = name
	it.Unit = strings.ToUpper(unit)
	it.Touch()
	return nil
}

// SetHSNCode sets the 4, 6 or 8 digit HSN classification
func (it *Item) SetHSNCode(code string) error {
	code = strings.TrimSpace(code)
	if code != "" && !hsnPattern.MatchString(code) {
		return shared.NewDomainError("INVALID_HSN", "HSN code must have 4, 6 or 8 digits")
	}
	it.HSNCode = code
	it.Touch()
	return nil
}

// SetPricing sets the default price and tax percentage; taxPercent may be nil
func (it *Item) SetPricing(price decimal.Decimal, taxPercent *decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	tax := decimal.NullDecimal{}
	if taxPercent != nil {
		if taxPercent.IsNegative() || taxPercent.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewDomainError("INVALID_TAX", "Tax percentage must be between 0 and 100")
		}
		tax = decimal.NewNullDecimal(*taxPercent)
	}
	it.TaxPercent = tax
	it.DefaultPrice = price
	it.Touch()
	return nil
}

// Activate makes the item selectable on invoices
func (it *Item) Activate() {
	it.Status = ItemStatusActive
	it.Touch()
}

// Deactivate hides the item from selection
func (it *Item) Deactivate() {
	it.Status = ItemStatusInactive
	it.Touch()
}

func (it *Item) IsActive() bool {
	return it.Status == ItemStatusActive
}
