// Package errors provides custom error types for the Bendahara API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that
// wrapped copies of a sentinel still match it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Persistence wraps a datastore failure. The caller only ever sees the stable
// message; the driver error stays in Internal for logging.
func Persistence(internal error) *AppError {
	return Wrap(ErrPersistenceFailure, internal)
}

// Authentication & authorization errors.
var (
	ErrUnauthenticated    = &AppError{Code: "UNAUTHENTICATED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "You are not allowed to perform this action", StatusCode: http.StatusForbidden}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput       = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound           = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrPersistenceFailure = &AppError{Code: "PERSISTENCE_FAILURE", Message: "Failed to save data", StatusCode: http.StatusInternalServerError}
	ErrInternalServer     = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound        = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCode           = &AppError{Code: "DUPLICATE_CODE", Message: "A category with this code already exists", StatusCode: http.StatusConflict}
	ErrSystemCategoryProtected = &AppError{Code: "SYSTEM_CATEGORY_PROTECTED", Message: "System categories cannot be deleted", StatusCode: http.StatusConflict}
	ErrInvalidCategoryType     = &AppError{Code: "INVALID_CATEGORY_TYPE", Message: "Category type must be INCOME or EXPENSE", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrEmptyBatch          = &AppError{Code: "EMPTY_BATCH", Message: "No students selected", StatusCode: http.StatusBadRequest}
	ErrAllDuplicates       = &AppError{Code: "ALL_DUPLICATES", Message: "Every selected student has already paid SPP for this month", StatusCode: http.StatusConflict}
	ErrDuplicatePayment    = &AppError{Code: "DUPLICATE_PAYMENT", Message: "Student has already paid SPP for this month", StatusCode: http.StatusConflict}
	ErrStudentRequired     = &AppError{Code: "STUDENT_REQUIRED", Message: "A student is required for this category", StatusCode: http.StatusBadRequest}
)
