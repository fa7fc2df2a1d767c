package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	for in, want := range map[string]string{
		"":        "DESC",
		"asc":     "ASC",
		"  Asc ":  "ASC",
		"desc":    "DESC",
		"ASC;--":  "DESC",
		"upwards": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(in), "input %q", in)
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		name    string
		orderBy string
		dir     string
		allowed map[string]bool
		def     string
		want    string
	}{
		{"invoice date ascending", "invoice_date", "asc", SalesInvoiceSortFields, "invoice_date", "invoice_date ASC, id ASC"},
		{"default when empty", "", "", SalesInvoiceSortFields, "invoice_date", "invoice_date DESC, id ASC"},
		{"id has no tiebreak", "id", "", SalesInvoiceSortFields, "invoice_date", "id DESC"},
		{"field names are case sensitive", "NAME", "asc", CustomerSortFields, "name", "name ASC, id ASC"},
		{"trimmed", " reference_no ", "asc", CustomerPaymentSortFields, "payment_date", "reference_no ASC, id ASC"},
		{"payment column unknown to items", "reference_no", "asc", ItemSortFields, "code", "code ASC, id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderClause(tt.orderBy, tt.dir, tt.allowed, tt.def))
		})
	}
}

func TestOrderClause_RejectsInjectedColumns(t *testing.T) {
	for _, payload := range []string{
		"invoice_date; DROP TABLE sales_invoices;--",
		"invoice_date' OR '1'='1",
		"total_amount, (SELECT 1)",
		"CASE WHEN 1=1 THEN id ELSE status END",
		"invoice_date\n;DELETE FROM customers",
	} {
		assert.Equal(t, "invoice_date DESC, id ASC", orderClause(payload, payload, SalesInvoiceSortFields, "invoice_date"))
	}
}

func TestSortFields_ShareTimestamps(t *testing.T) {
	for name, fields := range map[string]map[string]bool{
		"customers": CustomerSortFields,
		"items":     ItemSortFields,
		"invoices":  SalesInvoiceSortFields,
		"payments":  CustomerPaymentSortFields,
	} {
		for _, col := range []string{"id", "created_at", "updated_at"} {
			assert.True(t, fields[col], "%s should sort by %s", name, col)
		}
	}
}
