package filter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidField    = errors.New("unknown filter field")
	ErrInvalidOperator = errors.New("unknown filter operator")
	ErrInvalidValue    = errors.New("invalid filter value")
)

// Operator is the closed set of comparison operators a property filter
// may use. Anything outside the set fails validation before evaluation.
type Operator string

const (
	OpEqual        Operator = "EQUAL"
	OpNotEqual     Operator = "NOTEQUAL"
	OpGreater      Operator = "GREATER"
	OpGreaterEqual Operator = "GREATEREQUAL"
	OpLess         Operator = "LESS"
	OpLessEqual    Operator = "LESSEQUAL"
	OpStartsWith   Operator = "STARTSWITH"
	OpEndsWith     Operator = "ENDSWITH"
	OpContain      Operator = "CONTAIN"
	OpNotContain   Operator = "NOTCONTAIN"
	// OpDateIn matches values falling inside the single calendar day of
	// the given date, as the half-open range [day, day+1).
	OpDateIn Operator = "DATEIN"
)

// ParseOperator normalizes and validates an operator name.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToUpper(strings.TrimSpace(s)))
	switch op {
	case OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
		OpStartsWith, OpEndsWith, OpContain, OpNotContain, OpDateIn:
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOperator, s)
}
