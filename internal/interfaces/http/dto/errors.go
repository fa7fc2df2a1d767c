package dto

import "net/http"

// Error codes produced by the HTTP layer itself. Domain codes pass
// through unchanged.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeBodyTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,

	// 400
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	"INVALID_QUANTITY":      http.StatusBadRequest,
	"INVALID_PRICE":         http.StatusBadRequest,
	"INVALID_DISCOUNT":      http.StatusBadRequest,
	"INVALID_TAX":           http.StatusBadRequest,
	"INVALID_PAYMENT_TERMS": http.StatusBadRequest,
	"INVALID_DUE_DATE":      http.StatusBadRequest,
	"INVALID_AMOUNT":        http.StatusBadRequest,
	"INVALID_PAYMENT_TYPE":  http.StatusBadRequest,
	"INVALID_CODE":          http.StatusBadRequest,
	"INVALID_TENANT":        http.StatusBadRequest,

	// 404
	ErrCodeNotFound: http.StatusNotFound,
	"ROW_NOT_FOUND": http.StatusNotFound,

	// 409
	"ALREADY_EXISTS":           http.StatusConflict,
	"CONCURRENCY_CONFLICT":     http.StatusConflict,
	"DISCOUNT_CONFLICT":        http.StatusConflict,
	"DUPLICATE_INVOICE_NUMBER": http.StatusConflict,
	"DUPLICATE_REQUEST":        http.StatusConflict,

	// 422
	"INVALID_STATE":     http.StatusUnprocessableEntity,
	"INVOICE_CANCELLED": http.StatusUnprocessableEntity,
	"PAYMENT_CANCELLED": http.StatusUnprocessableEntity,
	"CANNOT_DELETE":     http.StatusUnprocessableEntity,

	// 503
	"STORAGE_UNAVAILABLE": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the status for code. Unknown codes come from the
// domain and are treated as 422 rule violations.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
