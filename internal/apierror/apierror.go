package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrInvalidAccountNumber ErrorCode = "INVALID_ACCOUNT_NUMBER"
	ErrInvalidPin           ErrorCode = "INVALID_PIN"
	ErrAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	ErrInvalidAmount        ErrorCode = "INVALID_AMOUNT"
	ErrInsufficientFunds    ErrorCode = "INSUFFICIENT_FUNDS"
	ErrNoSession            ErrorCode = "NO_SESSION"
	ErrStoreCorrupt         ErrorCode = "STORE_CORRUPT"
	ErrStoreUnavailable     ErrorCode = "STORE_UNAVAILABLE"
	ErrBadRequest           ErrorCode = "BAD_REQUEST"
	ErrInvalidInput         ErrorCode = "INVALID_INPUT"
	ErrInternalServer       ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause when Details carries one.
func (e APIError) Unwrap() error {
	if err, ok := e.Details.(error); ok {
		return err
	}
	return nil
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	if details != nil {
		logrus.WithField("code", code).Error(details)
	}
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// As extracts an APIError from err, following wrapped errors.
func As(err error) (APIError, bool) {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return APIError{}, false
}

// Is reports whether err is an APIError carrying the given code.
func Is(err error, code ErrorCode) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Code == code
}

// Message returns the user-facing message of err.
func Message(err error) string {
	if apiErr, ok := As(err); ok {
		return apiErr.Message
	}
	return err.Error()
}

func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := As(err); ok {
		switch apiErr.Code {
		case ErrInvalidAccountNumber, ErrInvalidPin, ErrInvalidAmount, ErrInvalidInput, ErrBadRequest:
			return http.StatusBadRequest
		case ErrAuthenticationFailed, ErrNoSession:
			return http.StatusUnauthorized
		case ErrInsufficientFunds:
			return http.StatusUnprocessableEntity
		case ErrStoreUnavailable:
			return http.StatusServiceUnavailable
		case ErrStoreCorrupt, ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
