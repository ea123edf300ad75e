package models

import (
	"errors"
	"fmt"
)

// StatusCode is the category of a rejected engine operation.
type StatusCode int

const (
	StatusInvalidArgument StatusCode = iota
	StatusOutOfStock
	StatusLimitExceeded
	StatusInternal
)

func (s StatusCode) String() string {
	switch s {
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusOutOfStock:
		return "OUT_OF_STOCK"
	case StatusLimitExceeded:
		return "LIMIT_EXCEEDED"
	case StatusInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// CommandError is returned when the engine rejects an operation.
// Product, Available and Requested are only set for stock and cap rejections.
type CommandError struct {
	Code      StatusCode
	Message   string
	Product   string
	Available int
	Requested int
}

func (e *CommandError) Error() string {
	return e.Message
}

// NewInvalidArgument creates a CommandError for malformed input.
func NewInvalidArgument(message string) *CommandError {
	return &CommandError{Code: StatusInvalidArgument, Message: message}
}

// NewInvalidArgumentf creates a CommandError for malformed input with a formatted message.
func NewInvalidArgumentf(format string, args ...interface{}) *CommandError {
	return &CommandError{Code: StatusInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NewOutOfStock creates a CommandError for a request exceeding available stock.
func NewOutOfStock(product string, available, requested int) *CommandError {
	return &CommandError{
		Code:      StatusOutOfStock,
		Message:   fmt.Sprintf("Stock of %s is insufficient (%d) to buy %d", product, available, requested),
		Product:   product,
		Available: available,
		Requested: requested,
	}
}

// NewLimitExceeded creates a CommandError for a per-order cap violation.
func NewLimitExceeded(product string, maximum, requested int, message string) *CommandError {
	return &CommandError{
		Code:      StatusLimitExceeded,
		Message:   message,
		Product:   product,
		Available: maximum,
		Requested: requested,
	}
}

// NewInternalf creates a CommandError for a broken caller contract.
func NewInternalf(format string, args ...interface{}) *CommandError {
	return &CommandError{Code: StatusInternal, Message: fmt.Sprintf(format, args...)}
}

// CodeOf reports the StatusCode carried by err, if any.
func CodeOf(err error) (StatusCode, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code, true
	}
	return 0, false
}

func IsInvalidArgument(err error) bool { return hasCode(err, StatusInvalidArgument) }
func IsOutOfStock(err error) bool      { return hasCode(err, StatusOutOfStock) }
func IsLimitExceeded(err error) bool   { return hasCode(err, StatusLimitExceeded) }
func IsInternal(err error) bool        { return hasCode(err, StatusInternal) }

func hasCode(err error, code StatusCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
