package settlement

import (
	"testing"
	"time"

	"github.com/dyehouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentDate = time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC)

func TestPaymentType(t *testing.T) {
	assert.True(t, PaymentTypeUPI.IsValid())
	assert.False(t, PaymentType("CRYPTO").IsValid())
	assert.True(t, PaymentTypeCheque.RequiresReference())
	assert.False(t, PaymentTypeCash.RequiresReference())
}

func TestNewCustomerPayment(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()
	inv1, inv2 := uuid.New(), uuid.New()

	t.Run("records payment with details", func(t *testing.T) {
		p, err := NewCustomerPayment(tenantID, customerID, paymentDate, PaymentTypeBankTransfer, "UTR123", d("1500"),
			[]PaymentDetail{{InvoiceID: inv1, Amount: d("1000")}, {InvoiceID: inv2, Amount: d("500")}})
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusRecorded, p.Status)
		assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), p.PaymentDate)
		assert.True(t, p.AllocatedAmount().Equal(d("1500")))
		assert.True(t, p.UnallocatedAmount().IsZero())
		assert.False(t, p.OverApplied())

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		recorded, ok := events[0].(*PaymentRecordedEvent)
		require.True(t, ok)
		assert.Len(t, recorded.Details, 2)
		assert.Equal(t, p.ID, recorded.AggregateID())
	})

	t.Run("over-application is allowed", func(t *testing.T) {
		p, err := NewCustomerPayment(tenantID, customerID, paymentDate, PaymentTypeCash, "", d("100"),
			[]PaymentDetail{{InvoiceID: inv1, Amount: d("150")}})
		require.NoError(t, err)
		assert.True(t, p.OverApplied())
	})

	t.Run("payment without details is an advance", func(t *testing.T) {
		p, err := NewCustomerPayment(tenantID, customerID, paymentDate, PaymentTypeUPI, "", d("100"), nil)
		require.NoError(t, err)
		assert.True(t, p.UnallocatedAmount().Equal(d("100")))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name    string
			cust    uuid.UUID
			ptype   PaymentType
			ref     string
			total   string
			details []PaymentDetail
			code    string
		}{
			{"nil customer", uuid.Nil, PaymentTypeCash, "", "10", nil, "INVALID_CUSTOMER"},
			{"bad type", customerID, "BARTER", "", "10", nil, "INVALID_PAYMENT_TYPE"},
			{"cheque without reference", customerID, PaymentTypeCheque, " ", "10", nil, "INVALID_REFERENCE"},
			{"zero total", customerID, PaymentTypeCash, "", "0", nil, "INVALID_AMOUNT"},
			{"zero detail", customerID, PaymentTypeCash, "", "10", []PaymentDetail{{InvoiceID: inv1, Amount: d("0")}}, "INVALID_AMOUNT"},
			{"duplicate invoice", customerID, PaymentTypeCash, "", "10", []PaymentDetail{{InvoiceID: inv1, Amount: d("1")}, {InvoiceID: inv1, Amount: d("2")}}, "DUPLICATE_INVOICE"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewCustomerPayment(tenantID, tt.cust, paymentDate, tt.ptype, tt.ref, d(tt.total), tt.details)
				require.Error(t, err)
				de, ok := shared.AsDomainError(err)
				require.True(t, ok)
				assert.Equal(t, tt.code, de.Code)
			})
		}
	})
}

func TestCustomerPayment_Cancel(t *testing.T) {
	p, err := NewCustomerPayment(uuid.New(), uuid.New(), paymentDate, PaymentTypeCash, "", d("100"),
		[]PaymentDetail{{InvoiceID: uuid.New(), Amount: d("100")}})
	require.NoError(t, err)
	p.ClearDomainEvents()

	require.NoError(t, p.Cancel("bounced"))
	assert.Equal(t, PaymentStatusCancelled, p.Status)
	assert.Equal(t, "bounced", p.CancelReason)
	require.Len(t, p.GetDomainEvents(), 1)
	cancelled := p.GetDomainEvents()[0].(*PaymentCancelledEvent)
	assert.Len(t, cancelled.Details, 1)

	assert.Error(t, p.Cancel("again"))
}
