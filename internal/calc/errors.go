package calc

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CodeNotANumber is the validation error code for an operand that does not
// parse to a number.
const CodeNotANumber = "validation_not_a_number"

// ValidationError reports an operand that could not be parsed.
type ValidationError struct {
	Field string
	Value string
	Err   validation.Error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Code returns the validation error code.
func (e *ValidationError) Code() string {
	return e.Err.Code()
}

func errNotANumber(field string) validation.Error {
	return validation.NewError(CodeNotANumber, field+" is not a number")
}
