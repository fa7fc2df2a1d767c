package partner

import (
	"context"

	"github.com/dyehouse/backend/internal/domain/partner"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BankService manages the dyehouse's own bank accounts
type BankService struct {
	bankRepo partner.BankRepository
	logger   *zap.Logger
}

// NewBankService creates a new BankService
func NewBankService(bankRepo partner.BankRepository, logger *zap.Logger) *BankService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BankService{bankRepo: bankRepo, logger: logger}
}

// Create adds a bank account. The first account, or one flagged default,
// becomes the default.
func (s *BankService) Create(ctx context.Context, tenantID uuid.UUID, req BankRequest) (*BankResponse, error) {
	bank, err := partner.NewBank(tenantID, req.Name, req.AccountName, req.AccountNumber, req.IFSC)
	if err != nil {
		return nil, err
	}
	bank.Branch = req.Branch

	existing, err := s.bankRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	bank.IsDefault = req.IsDefault || len(existing) == 0
	if bank.IsDefault {
		if err := s.clearDefault(ctx, existing); err != nil {
			return nil, err
		}
	}

	if err := s.bankRepo.Save(ctx, bank); err != nil {
		return nil, err
	}
	s.logger.Info("bank account created",
		zap.String("bank_id", bank.ID.String()),
		zap.String("account", bank.MaskedAccountNumber()),
	)

	resp := ToBankResponse(bank)
	return &resp, nil
}

// GetByID retrieves a bank account
func (s *BankService) GetByID(ctx context.Context, tenantID, bankID uuid.UUID) (*BankResponse, error) {
	bank, err := s.bankRepo.FindByIDForTenant(ctx, tenantID, bankID)
	if err != nil {
		return nil, err
	}
	resp := ToBankResponse(bank)
	return &resp, nil
}

// List returns all bank accounts of the tenant
func (s *BankService) List(ctx context.Context, tenantID uuid.UUID) ([]BankResponse, error) {
	banks, err := s.bankRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]BankResponse, len(banks))
	for i := range banks {
		out[i] = ToBankResponse(&banks[i])
	}
	return out, nil
}

// Update replaces a bank account's details
func (s *BankService) Update(ctx context.Context, tenantID, bankID uuid.UUID, req BankRequest) (*BankResponse, error) {
	bank, err := s.bankRepo.FindByIDForTenant(ctx, tenantID, bankID)
	if err != nil {
		return nil, err
	}
	if err := bank.Update(req.Name, req.AccountName, req.AccountNumber, req.IFSC, req.Branch); err != nil {
		return nil, err
	}
	if req.IsDefault && !bank.IsDefault {
		others, err := s.bankRepo.FindAllForTenant(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if err := s.clearDefault(ctx, others); err != nil {
			return nil, err
		}
		bank.IsDefault = true
	}

	if err := s.bankRepo.Save(ctx, bank); err != nil {
		return nil, err
	}
	resp := ToBankResponse(bank)
	return &resp, nil
}

// Delete removes a bank account
func (s *BankService) Delete(ctx context.Context, tenantID, bankID uuid.UUID) error {
	if _, err := s.bankRepo.FindByIDForTenant(ctx, tenantID, bankID); err != nil {
		return err
	}
	return s.bankRepo.DeleteForTenant(ctx, tenantID, bankID)
}

func (s *BankService) clearDefault(ctx context.Context, banks []partner.Bank) error {
	for i := range banks {
		if !banks[i].IsDefault {
			continue
		}
		banks[i].IsDefault = false
		banks[i].Touch()
		if err := s.bankRepo.Save(ctx, &banks[i]); err != nil {
			return err
		}
	}
	return nil
}
