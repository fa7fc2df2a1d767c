package partner

import (
	"regexp"
	"strings"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

var (
	gstinPattern     = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	stateCodePattern = regexp.MustCompile(`^[0-9]{2}$`)
	phonePattern     = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Customer is a party the dyehouse invoices for processing work
type Customer struct {
	shared.TenantAggregateRoot
	Code       string
	Name       string
	GSTIN      string
	StateCode  string // two-digit GST state code, decides intrastate vs interstate supply
	Address    string
	City       string
	Phone      string
	Email      string
	CreditDays int // default payment terms for new invoices
	Status     CustomerStatus
	Notes      string
}

// NewCustomer creates a new active customer
func NewCustomer(tenantID uuid.UUID, code, name string) (*Customer, error) {
	if err := validateCustomerCode(code); err != nil {
		return nil, err
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                strings.TrimSpace(name),
		Status:              CustomerStatusActive,
	}, nil
}

// Update updates the customer's name and notes
func (c *Customer) Update(name, notes string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Notes = notes
	c.Touch()
	return nil
}

// SetTaxRegistration sets GSTIN and state code. An empty state code is taken
// from the first two digits of the GSTIN.
func (c *Customer) SetTaxRegistration(gstin, stateCode string) error {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	stateCode = strings.TrimSpace(stateCode)
	if gstin != "" {
		if !gstinPattern.MatchString(gstin) {
			return shared.NewDomainError("INVALID_GSTIN", "GSTIN must be 15 characters in the standard format")
		}
		if stateCode == "" {
			stateCode = gstin[:2]
		}
		if stateCode != gstin[:2] {
			return shared.NewDomainError("INVALID_STATE_CODE", "State code does not match GSTIN")
		}
	}
	if stateCode != "" && !stateCodePattern.MatchString(stateCode) {
		return shared.NewDomainError("INVALID_STATE_CODE", "State code must be two digits")
	}
	c.GSTIN = gstin
	c.StateCode = stateCode
	c.Touch()
	return nil
}

// SetContact sets address and contact details
func (c *Customer) SetContact(address, city, phone, email string) error {
	if phone != "" && (len(phone) > 50 || !phonePattern.MatchString(phone)) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	if email != "" && (len(email) > 200 || !emailPattern.MatchString(email)) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	c.Address = address
	c.City = city
	c.Phone = phone
	c.Email = email
	c.Touch()
	return nil
}

// SetCreditDays sets the default payment terms
func (c *Customer) SetCreditDays(days int) error {
	if days < 0 || days > 365 {
		return shared.NewDomainError("INVALID_CREDIT_DAYS", "Credit days must be between 0 and 365")
	}
	c.CreditDays = days
	c.Touch()
	return nil
}

func (c *Customer) Activate() {
	c.Status = CustomerStatusActive
	c.Touch()
}

func (c *Customer) Deactivate() {
	c.Status = CustomerStatusInactive
	c.Touch()
}

func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

func validateCustomerCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Customer code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}
