package partner

import (
	"strings"
	"time"

	"github.com/dyehouse/backend/internal/domain/partner"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Code       string `json:"code" binding:"required,min=1,max=50"`
	Name       string `json:"name" binding:"required,min=1,max=200"`
	GSTIN      string `json:"gstin" binding:"omitempty,len=15"`
	StateCode  string `json:"state_code" binding:"omitempty,len=2,numeric"`
	Address    string `json:"address" binding:"max=500"`
	City       string `json:"city" binding:"max=100"`
	Phone      string `json:"phone" binding:"max=50"`
	Email      string `json:"email" binding:"omitempty,email,max=200"`
	CreditDays *int   `json:"credit_days" binding:"omitempty,min=0,max=365"`
	Notes      string `json:"notes"`
}

// UpdateCustomerRequest represents a request to update a customer. Nil
// fields are left unchanged.
type UpdateCustomerRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=200"`
	GSTIN      *string `json:"gstin" binding:"omitempty,len=15"`
	StateCode  *string `json:"state_code" binding:"omitempty,len=2,numeric"`
	Address    *string `json:"address" binding:"omitempty,max=500"`
	City       *string `json:"city" binding:"omitempty,max=100"`
	Phone      *string `json:"phone" binding:"omitempty,max=50"`
	Email      *string `json:"email" binding:"omitempty,email,max=200"`
	CreditDays *int    `json:"credit_days" binding:"omitempty,min=0,max=365"`
	Notes      *string `json:"notes"`
	Status     *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	GSTIN       string    `json:"gstin"`
	StateCode   string    `json:"state_code"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	CreditDays  int       `json:"credit_days"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// CustomerListFilter represents filter options for customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=code name created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DisplayName renders a customer name in title case; names are often
// keyed in all capitals. A Caser is stateful, so one is made per call.
func DisplayName(name string) string {
	return cases.Title(language.English).String(strings.ToLower(name))
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		TenantID:    c.TenantID,
		Code:        c.Code,
		Name:        c.Name,
		DisplayName: DisplayName(c.Name),
		GSTIN:       c.GSTIN,
		StateCode:   c.StateCode,
		Address:     c.Address,
		City:        c.City,
		Phone:       c.Phone,
		Email:       c.Email,
		CreditDays:  c.CreditDays,
		Status:      string(c.Status),
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Version:     c.Version,
	}
}

// ToCustomerResponses converts a slice of domain Customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}

// =============================================================================
// Bank DTOs
// =============================================================================

// BankRequest creates or replaces a bank account
type BankRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	AccountName   string `json:"account_name" binding:"max=200"`
	AccountNumber string `json:"account_number" binding:"required,min=6,max=24"`
	IFSC          string `json:"ifsc" binding:"required,len=11"`
	Branch        string `json:"branch" binding:"max=200"`
	IsDefault     bool   `json:"is_default"`
}

// BankResponse represents a bank account; the number is masked
type BankResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	AccountName   string    `json:"account_name"`
	AccountNumber string    `json:"account_number"`
	IFSC          string    `json:"ifsc"`
	Branch        string    `json:"branch"`
	IsDefault     bool      `json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToBankResponse converts a domain Bank to BankResponse
func ToBankResponse(b *partner.Bank) BankResponse {
	return BankResponse{
		ID:            b.ID,
		Name:          b.Name,
		AccountName:   b.AccountName,
		AccountNumber: b.MaskedAccountNumber(),
		IFSC:          b.IFSC,
		Branch:        b.Branch,
		IsDefault:     b.IsDefault,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
