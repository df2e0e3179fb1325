package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound             = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists        = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation           = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation     = new(ErrCodeInvalidOperation, "invalid operation")
	ErrPermissionDenied     = new(ErrCodePermissionDenied, "permission denied")
	ErrHTTPClient           = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase             = new(ErrCodeDatabase, "database error")
	ErrSystem               = new(ErrCodeSystemError, "system error")
	ErrInternal             = new(ErrCodeInternal, "internal error")
	ErrPreconditionFailed   = new(ErrCodePreconditionFailed, "precondition failed")
	ErrInvalidPaymentMethod = new(ErrCodeInvalidPaymentMethod, "invalid payment method")
	ErrPaymentGateway       = new(ErrCodePaymentGateway, "payment gateway error")
	ErrInvalidSignature     = new(ErrCodeInvalidSignature, "invalid webhook signature")
	ErrDonationNotFound     = new(ErrCodeDonationNotFound, "donation not found")
	ErrMalformedEvent       = new(ErrCodeMalformedEvent, "malformed webhook event")
	ErrConcurrencyConflict  = new(ErrCodeConcurrencyConflict, "concurrency conflict")
	// maps errors to http status codes. Errors can carry several marks, so
	// domain specific sentinels come before the generic ones they wrap.
	statusCodes = []struct {
		err    error
		status int
	}{
		{ErrInvalidSignature, http.StatusUnauthorized},
		{ErrMalformedEvent, http.StatusBadRequest},
		{ErrDonationNotFound, http.StatusNotFound},
		{ErrInvalidPaymentMethod, http.StatusBadRequest},
		{ErrPaymentGateway, http.StatusBadGateway},
		{ErrPreconditionFailed, http.StatusPreconditionFailed},
		{ErrConcurrencyConflict, http.StatusConflict},
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidOperation, http.StatusBadRequest},
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrHTTPClient, http.StatusInternalServerError},
		{ErrDatabase, http.StatusInternalServerError},
		{ErrSystem, http.StatusInternalServerError},
		{ErrInternal, http.StatusInternalServerError},
	}
)

const (
	ErrCodeHTTPClient           = "http_client_error"
	ErrCodeSystemError          = "system_error"
	ErrCodeInternal             = "internal_error"
	ErrCodeNotFound             = "not_found"
	ErrCodeAlreadyExists        = "already_exists"
	ErrCodeValidation           = "validation_error"
	ErrCodeInvalidOperation     = "invalid_operation"
	ErrCodePermissionDenied     = "permission_denied"
	ErrCodeDatabase             = "database_error"
	ErrCodePreconditionFailed   = "precondition_failed"
	ErrCodeInvalidPaymentMethod = "invalid_payment_method"
	ErrCodePaymentGateway       = "payment_gateway_error"
	ErrCodeInvalidSignature     = "invalid_signature"
	ErrCodeDonationNotFound     = "donation_not_found"
	ErrCodeMalformedEvent       = "malformed_event"
	ErrCodeConcurrencyConflict  = "concurrency_conflict"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is a passthrough to cockroachdb errors.Is so callers need a single import
func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

func IsPreconditionFailed(err error) bool {
	return errors.Is(err, ErrPreconditionFailed)
}

func IsInvalidPaymentMethod(err error) bool {
	return errors.Is(err, ErrInvalidPaymentMethod)
}

func IsPaymentGateway(err error) bool {
	return errors.Is(err, ErrPaymentGateway)
}

func IsInvalidSignature(err error) bool {
	return errors.Is(err, ErrInvalidSignature)
}

func IsDonationNotFound(err error) bool {
	return errors.Is(err, ErrDonationNotFound)
}

func IsMalformedEvent(err error) bool {
	return errors.Is(err, ErrMalformedEvent)
}

// IsConcurrencyConflict reports serialization failures and deadlocks surfaced by the database layer
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}
