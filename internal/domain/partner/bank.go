package partner

import (
	"regexp"
	"strings"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

// Bank is one of the dyehouse's own accounts, printed on invoices as payment instructions
type Bank struct {
	shared.TenantAggregateRoot
	Name          string
	AccountName   string
	AccountNumber string
	IFSC          string
	Branch        string
	IsDefault     bool
}

// NewBank creates a bank account record
func NewBank(tenantID uuid.UUID, name, accountName, accountNumber, ifsc string) (*Bank, error) {
	b := &Bank{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	if err := b.Update(name, accountName, accountNumber, ifsc, ""); err != nil {
		return nil, err
	}
	return b, nil
}

// Update replaces the account details
func (b *Bank) Update(name, accountName, accountNumber, ifsc, branch string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_BANK_NAME", "Bank name must be 1 to 100 characters")
	}
	accountNumber = strings.ReplaceAll(accountNumber, " ", "")
	if len(accountNumber) < 6 || len(accountNumber) > 20 {
		return shared.NewDomainError("INVALID_ACCOUNT_NUMBER", "Account number must be 6 to 20 digits")
	}
	for _, r := range accountNumber {
		if r < '0' || r > '9' {
			return shared.NewDomainError("INVALID_ACCOUNT_NUMBER", "Account number must be numeric")
		}
	}
	ifsc = strings.ToUpper(strings.TrimSpace(ifsc))
	if !ifscPattern.MatchString(ifsc) {
		return shared.NewDomainError("INVALID_IFSC", "IFSC must be 11 characters, e.g. SBIN0001234")
	}

	b.Name = name
	b.AccountName = strings.TrimSpace(accountName)
	b.AccountNumber = accountNumber
	b.IFSC = ifsc
	b.Branch = branch
	b.Touch()
	return nil
}

// MaskedAccountNumber shows only the last four digits
func (b *Bank) MaskedAccountNumber() string {
	n := len(b.AccountNumber)
	if n <= 4 {
		return b.AccountNumber
	}
	return strings.Repeat("X", n-4) + b.AccountNumber[n-4:]
}
