package delivery

import (
	"errors"
	"fmt"
)

// Code classifies a delivery-core failure. Handlers map codes to HTTP
// statuses; the core never retries on its own.
type Code string

const (
	CodeNotFound                  Code = "NotFound"
	CodeForbidden                 Code = "Forbidden"
	CodeConflict                  Code = "Conflict"
	CodeInvalidArgument           Code = "InvalidArgument"
	CodeInvalidOtp                Code = "InvalidOtp"
	CodeInsufficientFunds         Code = "InsufficientFunds"
	CodePaymentVerificationFailed Code = "PaymentVerificationFailed"
	CodeInvalidState              Code = "InvalidState"
)

// Error is the typed failure returned by every bid, settlement and
// fulfillment operation.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a typed delivery error.
func NewError(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from err, or empty if err is not a delivery error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
