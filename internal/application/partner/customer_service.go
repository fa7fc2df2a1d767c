package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/partner"
	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	invoiceRepo  invoicing.SalesInvoiceRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, invoiceRepo invoicing.SalesInvoiceRepository, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	// Check if code already exists
	if err := s.ensureCodeFree(ctx, tenantID, req.Code); err != nil {
		return nil, err
	}

	customer, err := partner.NewCustomer(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if err := customer.SetTaxRegistration(req.GSTIN, req.StateCode); err != nil {
		return nil, err
	}
	if err := customer.SetContact(req.Address, req.City, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if req.CreditDays != nil {
		if err := customer.SetCreditDays(*req.CreditDays); err != nil {
			return nil, err
		}
	}
	customer.Notes = req.Notes

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("code", customer.Code),
	)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a list of customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Notes != nil {
		if err := customer.Update(pick(req.Name, customer.Name), pick(req.Notes, customer.Notes)); err != nil {
			return nil, err
		}
	}

	// The state code follows a changed GSTIN unless given explicitly
	if req.GSTIN != nil || req.StateCode != nil {
		stateCode := customer.StateCode
		if req.GSTIN != nil {
			stateCode = ""
		}
		if err := customer.SetTaxRegistration(pick(req.GSTIN, customer.GSTIN), pick(req.StateCode, stateCode)); err != nil {
			return nil, err
		}
	}

	if req.Address != nil || req.City != nil || req.Phone != nil || req.Email != nil {
		err := customer.SetContact(
			pick(req.Address, customer.Address),
			pick(req.City, customer.City),
			pick(req.Phone, customer.Phone),
			pick(req.Email, customer.Email),
		)
		if err != nil {
			return nil, err
		}
	}

	if req.CreditDays != nil {
		if err := customer.SetCreditDays(*req.CreditDays); err != nil {
			return nil, err
		}
	}

	if req.Status != nil {
		switch partner.CustomerStatus(*req.Status) {
		case partner.CustomerStatusActive:
			customer.Activate()
		case partner.CustomerStatusInactive:
			customer.Deactivate()
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete deletes a customer that has never been invoiced
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return err
	}

	count, err := s.invoiceRepo.CountForTenant(ctx, tenantID, invoicing.InvoiceFilter{
		Filter:     shared.DefaultFilter(),
		CustomerID: &customerID,
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CANNOT_DELETE", "Cannot delete a customer with invoices; deactivate it instead")
	}

	if err := s.customerRepo.DeleteForTenant(ctx, tenantID, customerID); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.String("customer_id", customerID.String()))
	return nil
}

func (s *CustomerService) ensureCodeFree(ctx context.Context, tenantID uuid.UUID, code string) error {
	_, err := s.customerRepo.FindByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(code)))
	switch {
	case err == nil:
		return shared.NewDomainError("ALREADY_EXISTS", "Customer with this code already exists")
	case errors.Is(err, shared.ErrNotFound):
		return nil
	default:
		return err
	}
}

func pick(v *string, current string) string {
	if v == nil {
		return current
	}
	return *v
}
