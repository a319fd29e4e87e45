package fraction

import "errors"

var (
	// ErrZeroDenominator is returned when constructing a fraction with a
	// zero denominator.
	ErrZeroDenominator = errors.New("fraction: zero denominator")

	// ErrDivisionByZero is returned when dividing by a zero-valued
	// fraction.
	ErrDivisionByZero = errors.New("fraction: division by zero")

	// ErrInvalidFormat is returned by Parse for input that is not a
	// whole number, a fraction, or a mixed fraction.
	ErrInvalidFormat = errors.New("fraction: invalid format")
)
