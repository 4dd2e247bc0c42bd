package calc

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Inputs holds the two operands of an addition request.
type Inputs struct {
	A float64
	B float64
}

// Sum returns A + B.
func (in Inputs) Sum() float64 {
	return in.A + in.B
}

// ParseQuery extracts operands a and b from a URL-encoded query string.
// Operand a is validated first; b is only looked at once a is valid.
// Only the first value of a repeated key is used, and pairs the decoder
// cannot unescape are dropped.
func ParseQuery(rawQuery string) (Inputs, error) {
	// ParseQuery keeps every pair it could decode alongside the first error.
	values, _ := url.ParseQuery(rawQuery)

	a, err := operand(values, "a")
	if err != nil {
		return Inputs{}, err
	}

	b, err := operand(values, "b")
	if err != nil {
		return Inputs{}, err
	}

	return Inputs{A: a, B: b}, nil
}

func operand(values url.Values, field string) (float64, error) {
	raw := values.Get(field)

	var parsed float64
	err := validation.Validate(raw,
		validation.Required.ErrorObject(errNotANumber(field)),
		validation.By(func(value interface{}) error {
			s, _ := value.(string)
			f, ok := ParseNumber(s)
			if !ok {
				return errNotANumber(field)
			}
			parsed = f
			return nil
		}),
	)
	if err != nil {
		vErr, ok := err.(validation.Error)
		if !ok {
			vErr = errNotANumber(field)
		}
		return 0, &ValidationError{Field: field, Value: raw, Err: vErr}
	}

	return parsed, nil
}
