package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted ORDER BY clause; id breaks ties so
// paging is stable
func orderClause(orderBy, orderDir string, allowed map[string]bool, defaultField string) string {
	field := ValidateSortField(orderBy, allowed, defaultField)
	clause := field + " " + ValidateSortOrder(orderDir)
	if field != "id" {
		clause += ", id ASC"
	}
	return clause
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"code":        true,
	"name":        true,
	"city":        true,
	"state_code":  true,
	"status":      true,
	"credit_days": true,
}

// ItemSortFields contains allowed sort fields for items
var ItemSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"code":          true,
	"name":          true,
	"hsn_code":      true,
	"default_price": true,
	"tax_percent":   true,
	"status":        true,
}

// SalesInvoiceSortFields contains allowed sort fields for invoices
var SalesInvoiceSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"invoice_number":  true,
	"invoice_date":    true,
	"due_date":        true,
	"customer_id":     true,
	"status":          true,
	"taxable_value":   true,
	"total_amount":    true,
	"amount_received": true,
	"balance_amount":  true,
}

// CustomerPaymentSortFields contains allowed sort fields for payments
var CustomerPaymentSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"payment_date": true,
	"payment_type": true,
	"reference_no": true,
	"customer_id":  true,
	"status":       true,
	"total_amount": true,
}
