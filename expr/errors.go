package expr

import (
	"errors"
	"fmt"
)

// ErrInvalidLiteral is returned when the expression factory is given a value
// it cannot coerce into a typed literal (a struct, a slice other than []byte, an untyped nil
// passed where a concrete value is required, or any other unsupported kind).
var ErrInvalidLiteral = errors.New("expr: invalid literal")

// ErrTypeMismatch is returned when an operator is applied to operands of an
// incompatible SQL type: arithmetic on non-numeric operands, boolean
// combinators on non-boolean operands, CASE branches whose types disagree,
// and so on.
var ErrTypeMismatch = errors.New("expr: type mismatch")

// invalidLiteralf wraps ErrInvalidLiteral with a formatted detail message
// while keeping it matchable with errors.Is.
func invalidLiteralf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidLiteral)...)
}

// typeMismatchf wraps ErrTypeMismatch with a formatted detail message while
// keeping it matchable with errors.Is.
func typeMismatchf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrTypeMismatch)...)
}
