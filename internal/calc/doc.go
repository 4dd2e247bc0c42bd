// Package calc parses the two operands of an addition request from a raw
// query string and renders numbers for the HTML response.
//
// An operand is valid when it parses to a number that is not NaN. Missing
// keys, empty values and non-numeric text are all rejected with a
// ValidationError whose message is "<field> is not a number". Operand a is
// always checked before operand b.
package calc
