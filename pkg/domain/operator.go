package domain

import "fmt"

// Operator is one of the four arithmetic symbols shown on the keypad.
type Operator string

const (
	OperatorAdd      Operator = "+"
	OperatorSubtract Operator = "-"
	OperatorMultiply Operator = "*"
	OperatorDivide   Operator = "÷"
)

// Operators lists the supported operators in keypad order.
var Operators = []Operator{OperatorDivide, OperatorMultiply, OperatorAdd, OperatorSubtract}

var operatorAliases = map[string]Operator{
	"+": OperatorAdd,
	"-": OperatorSubtract,
	"−": OperatorSubtract,
	"*": OperatorMultiply,
	"x": OperatorMultiply,
	"×": OperatorMultiply,
	"÷": OperatorDivide,
	"/": OperatorDivide,
}

// ParseOperator resolves a symbol (or a common alias such as "/" or "×") to an Operator.
func ParseOperator(symbol string) (Operator, error) {
	if op, ok := operatorAliases[symbol]; ok {
		return op, nil
	}
	return "", fmt.Errorf("%w: unknown operator %q", ErrInvalidAction, symbol)
}

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	switch op {
	case OperatorAdd, OperatorSubtract, OperatorMultiply, OperatorDivide:
		return true
	}
	return false
}

func (op Operator) String() string {
	return string(op)
}
