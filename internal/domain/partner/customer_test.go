package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates active customer with upper-case code", func(t *testing.T) {
		c, err := NewCustomer(uuid.New(), "sri-mills", "  Sri Ganesh Mills ")
		require.NoError(t, err)
		assert.Equal(t, "SRI-MILLS", c.Code)
		assert.Equal(t, "Sri Ganesh Mills", c.Name)
		assert.True(t, c.IsActive())
	})

	t.Run("rejects bad code and name", func(t *testing.T) {
		_, err := NewCustomer(uuid.New(), "", "Name")
		assert.Error(t, err)
		_, err = NewCustomer(uuid.New(), "A B", "Name")
		assert.Error(t, err)
		_, err = NewCustomer(uuid.New(), "AB", " ")
		assert.Error(t, err)
	})
}

func TestCustomer_SetTaxRegistration(t *testing.T) {
	c, err := NewCustomer(uuid.New(), "C1", "Customer")
	require.NoError(t, err)

	t.Run("state code is taken from GSTIN", func(t *testing.T) {
		require.NoError(t, c.SetTaxRegistration("33aabcs1234d1z5", ""))
		assert.Equal(t, "33AABCS1234D1Z5", c.GSTIN)
		assert.Equal(t, "33", c.StateCode)
	})

	t.Run("state code alone is allowed", func(t *testing.T) {
		require.NoError(t, c.SetTaxRegistration("", "29"))
		assert.Equal(t, "", c.GSTIN)
		assert.Equal(t, "29", c.StateCode)
	})

	t.Run("mismatched state code is rejected", func(t *testing.T) {
		assert.Error(t, c.SetTaxRegistration("33AABCS1234D1Z5", "29"))
		assert.Equal(t, "29", c.StateCode)
	})

	t.Run("malformed values are rejected", func(t *testing.T) {
		assert.Error(t, c.SetTaxRegistration("33ABC", ""))
		assert.Error(t, c.SetTaxRegistration("", "TN"))
	})
}

func TestCustomer_Contact(t *testing.T) {
	c, err := NewCustomer(uuid.New(), "C1", "Customer")
	require.NoError(t, err)
	require.NoError(t, c.SetContact("12 Mill Road", "Tiruppur", "+91 98765 43210", "accounts@example.in"))
	assert.Error(t, c.SetContact("", "", "call me", ""))
	assert.Error(t, c.SetContact("", "", "", "not-an-email"))

	require.NoError(t, c.SetCreditDays(45))
	assert.Equal(t, 45, c.CreditDays)
	assert.Error(t, c.SetCreditDays(-1))

	c.Deactivate()
	assert.False(t, c.IsActive())
	c.Activate()
	assert.True(t, c.IsActive())
}

func TestNewBank(t *testing.T) {
	b, err := NewBank(uuid.New(), "State Bank of India", "Dyehouse Pvt Ltd", "3012 3456 7890", "sbin0001234")
	require.NoError(t, err)
	assert.Equal(t, "301234567890", b.AccountNumber)
	assert.Equal(t, "SBIN0001234", b.IFSC)
	assert.Equal(t, "XXXXXXXX7890", b.MaskedAccountNumber())

	_, err = NewBank(uuid.New(), "", "x", "123456", "SBIN0001234")
	assert.Error(t, err)
	_, err = NewBank(uuid.New(), "SBI", "x", "12AB56", "SBIN0001234")
	assert.Error(t, err)
	_, err = NewBank(uuid.New(), "SBI", "x", "123456", "SBIN1001234")
	assert.Error(t, err)
}
