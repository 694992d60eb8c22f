package service

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for illegal order-status changes,
// including any attempt to modify or re-cancel a terminal order.
var ErrInvalidTransition = errors.New("invalid order status transition")

// ValidationError reports bad input or a business-rule violation. The
// field names the offending input when one can be singled out.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
