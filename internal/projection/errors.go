package projection

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a request or configuration value that violates a
// precondition of the engine. It is never coerced into a result.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnknownCurrency indicates a currency code with no configured profile.
var ErrUnknownCurrency = errors.New("unknown currency code")

// InputError names the offending field. errors.Is(err, ErrInvalidInput)
// holds for every InputError.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// Is reports ErrInvalidInput as the error kind.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}
