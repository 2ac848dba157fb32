package calculator

import (
	"math"

	"github.com/aretw0/keypad/pkg/domain"
)

// Evaluate applies op to the two operands and returns the canonical string form of the result.
// An operand without a numeric prefix, or an unknown operator, yields "".
// Division by zero follows IEEE-754: ±Infinity, or NaN for 0/0.
func Evaluate(previous, current string, op domain.Operator) string {
	prev := ParseFloat(previous)
	cur := ParseFloat(current)
	if math.IsNaN(prev) || math.IsNaN(cur) {
		return ""
	}

	var result float64
	switch op {
	case domain.OperatorAdd:
		result = prev + cur
	case domain.OperatorSubtract:
		result = prev - cur
	case domain.OperatorMultiply:
		result = prev * cur
	case domain.OperatorDivide:
		result = prev / cur
	default:
		return ""
	}
	return FormatNumber(result)
}
