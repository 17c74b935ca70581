package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Claim set construction errors
	ErrCodeConstructionInvalid ErrorCode = "CONSTRUCTION_INVALID"

	// Token verification errors. STRUCTURAL_INVALID and ALGORITHM_MISMATCH
	// classify failures internally; they are collapsed into MAC_INVALID before
	// they leave the MAC primitive so that callers (and attackers) cannot tell
	// a malformed token from a forged one.
	ErrCodeStructuralInvalid ErrorCode = "STRUCTURAL_INVALID"
	ErrCodeAlgorithmMismatch ErrorCode = "ALGORITHM_MISMATCH"
	ErrCodeMacInvalid        ErrorCode = "MAC_INVALID"
	ErrCodeNoKeyVerified     ErrorCode = "NO_KEY_VERIFIED"

	// Claim validation errors
	ErrCodeExpired        ErrorCode = "EXPIRED"
	ErrCodeNotYetValid    ErrorCode = "NOT_YET_VALID"
	ErrCodeGenericInvalid ErrorCode = "GENERIC_INVALID"

	// Key and keyset errors
	ErrCodeKeyInvalid ErrorCode = "KEY_INVALID"

	// Configuration errors
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// MacSmithError represents a standardized error with context
type MacSmithError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"cause,omitempty"`
	HTTPStatus int                    `json:"http_status"`
}

// Error implements the error interface
func (e *MacSmithError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *MacSmithError) Unwrap() error {
	return e.Cause
}

// WithDetails adds additional context to the error
func (e *MacSmithError) WithDetails(key string, value interface{}) *MacSmithError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new MacSmithError with the given code and message
func New(code ErrorCode, message string) *MacSmithError {
	return &MacSmithError{
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(code),
	}
}

// Newf creates a new MacSmithError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MacSmithError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *MacSmithError {
	return &MacSmithError{
		Code:       code,
		Message:    message,
		Cause:      err,
		HTTPStatus: getHTTPStatus(code),
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MacSmithError {
	return &MacSmithError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Cause:      err,
		HTTPStatus: getHTTPStatus(code),
	}
}

// getHTTPStatus returns the appropriate HTTP status code for an error code
func getHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeMacInvalid, ErrCodeNoKeyVerified, ErrCodeExpired, ErrCodeNotYetValid,
		ErrCodeGenericInvalid, ErrCodeStructuralInvalid, ErrCodeAlgorithmMismatch:
		return http.StatusUnauthorized
	case ErrCodeConstructionInvalid, ErrCodeKeyInvalid, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsMacSmithError checks if an error is a MacSmithError
func IsMacSmithError(err error) bool {
	var msErr *MacSmithError
	return errors.As(err, &msErr)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var msErr *MacSmithError
	if errors.As(err, &msErr) {
		return msErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether the error carries the given code
func HasCode(err error, code ErrorCode) bool {
	var msErr *MacSmithError
	if errors.As(err, &msErr) {
		return msErr.Code == code
	}
	return false
}

// GetHTTPStatus extracts the HTTP status from an error
func GetHTTPStatus(err error) int {
	var msErr *MacSmithError
	if errors.As(err, &msErr) {
		return msErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
