// Package apperror provides domain-specific error types for the storefront
// gateway. These errors carry an HTTP status code and a user-safe message.
// The Echo error handler maps them to appropriate HTTP responses
// automatically.
//
// NEVER return raw upstream or infrastructure errors to the client. Always
// wrap them in an apperror type or return a generic internal error.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the base error type for all domain errors. It carries an
// HTTP status code, a machine-readable error type, and a human-readable
// message safe to show to the client.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 400, 502).
	Code int `json:"-"`

	// Type is a machine-readable error classifier (e.g., "capacity").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying error for logging. Never exposed to client.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Error type classifiers. Handlers and tests branch on these instead of
// comparing status codes.
const (
	TypeAuth         = "auth_error"
	TypeAuthRequired = "auth_required"
	TypeCapacity     = "capacity"
	TypeEmptyCart    = "empty_cart"
	TypeNetwork      = "network"
	TypeNotFound     = "not_found"
	TypeBadRequest   = "bad_request"
	TypeForbidden    = "forbidden"
	TypeValidation   = "validation_error"
	TypeInternal     = "internal_error"
)

// --- Constructors for the domain error taxonomy ---

// NewAuthError creates a 401 error for bad credentials or an expired
// upstream session.
func NewAuthError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    TypeAuth,
		Message: message,
	}
}

// NewAuthRequired creates a 401 error for actions that need a logged-in
// user. The caller's job is to prompt for login, not to retry.
func NewAuthRequired(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    TypeAuthRequired,
		Message: message,
	}
}

// NewCapacity creates a 422 error for cart quantities outside the allowed
// bounds. The cart is never mutated when this is returned.
func NewCapacity(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Type:    TypeCapacity,
		Message: message,
	}
}

// NewEmptyCart creates a 400 error for checkout attempts on an empty cart.
func NewEmptyCart() *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    TypeEmptyCart,
		Message: "your cart is empty",
	}
}

// NewNetwork creates a 502 error for transient failures reaching the
// upstream backend. The real error is kept for logging.
func NewNetwork(err error) *AppError {
	return &AppError{
		Code:     http.StatusBadGateway,
		Type:     TypeNetwork,
		Message:  "the store is temporarily unreachable. Please try again.",
		Internal: err,
	}
}

// NewNotFound creates a 404 Not Found error.
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    TypeNotFound,
		Message: message,
	}
}

// NewBadRequest creates a 400 Bad Request error.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    TypeBadRequest,
		Message: message,
	}
}

// NewForbidden creates a 403 Forbidden error.
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Type:    TypeForbidden,
		Message: message,
	}
}

// NewValidation creates a 422 Unprocessable Entity error for validation failures.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Type:    TypeValidation,
		Message: message,
	}
}

// NewInternal creates a 500 Internal Server Error. The real error is stored
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     TypeInternal,
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// --- Predicates ---

// isType reports whether err is an *AppError with the given classifier.
func isType(err error, typ string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == typ
}

// IsAuth reports whether err is a credential/session rejection.
func IsAuth(err error) bool { return isType(err, TypeAuth) }

// IsAuthRequired reports whether err signals that the action needs login.
func IsAuthRequired(err error) bool { return isType(err, TypeAuthRequired) }

// IsCapacity reports whether err is a quantity-bounds violation.
func IsCapacity(err error) bool { return isType(err, TypeCapacity) }

// IsEmptyCart reports whether err is an empty-cart checkout rejection.
func IsEmptyCart(err error) bool { return isType(err, TypeEmptyCart) }

// IsNetwork reports whether err is a transient upstream failure.
func IsNetwork(err error) bool { return isType(err, TypeNetwork) }

// IsNotFound reports whether err is a missing-resource error.
func IsNotFound(err error) bool { return isType(err, TypeNotFound) }

// SafeMessage returns the client-safe error message from an error. If the
// error is an AppError, returns its Message field (which is safe to expose).
// For any other error type, returns a generic message to prevent leaking
// internal details like upstream URLs or stack traces.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code from an AppError, or 500 for
// any other error type.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
