package calculator

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/keypad/pkg/domain"
)

// Outcome reports what a Step did besides producing the next state.
type Outcome struct {
	// Applied is false when the action was a no-op.
	Applied bool

	// Evaluated is true when a pending expression was reduced.
	Evaluated bool

	// Previous, Current and Operator describe the reduced expression (when Evaluated).
	Previous string
	Current  string
	Operator domain.Operator

	// Result is the evaluator output (when Evaluated).
	Result string
}

// Transition returns the state that follows s after action a.
func Transition(s domain.State, a domain.Action) domain.State {
	next, _ := Step(s, a)
	return next
}

// Step is Transition plus a report of what happened.
// Malformed actions (unknown type, bad digit, bad operator) are no-ops.
func Step(s domain.State, a domain.Action) (domain.State, Outcome) {
	switch a.Type {
	case domain.ActionAddDigit:
		return addDigit(s, a.Digit)
	case domain.ActionChooseOperation:
		return chooseOperation(s, a.Operator)
	case domain.ActionEvaluate:
		return evaluate(s)
	case domain.ActionClear:
		return domain.State{}, Outcome{Applied: true}
	case domain.ActionDeleteDigit:
		return deleteDigit(s)
	}
	return s, Outcome{}
}

func addDigit(s domain.State, digit string) (domain.State, Outcome) {
	if !domain.IsDigit(digit) {
		return s, Outcome{}
	}

	if s.Overwrite {
		next := s
		next.CurrentOperand = domain.Operand(digit)
		next.Overwrite = false
		return next, Outcome{Applied: true}
	}
	if digit == "0" && s.CurrentOperand != nil && *s.CurrentOperand == "0" {
		return s, Outcome{}
	}
	if digit == "." && strings.Contains(s.Current(), ".") {
		return s, Outcome{}
	}

	next := s
	next.CurrentOperand = domain.Operand(s.Current() + digit)
	return next, Outcome{Applied: true}
}

func chooseOperation(s domain.State, op domain.Operator) (domain.State, Outcome) {
	if !op.Valid() {
		return s, Outcome{}
	}

	switch {
	case s.PreviousOperand == nil && s.CurrentOperand == nil:
		return s, Outcome{}

	case s.PreviousOperand == nil:
		next := s
		next.PreviousOperand = domain.Operand(*s.CurrentOperand)
		next.Operator = op
		next.CurrentOperand = nil
		return next, Outcome{Applied: true}

	case s.CurrentOperand == nil:
		next := s
		next.Operator = op
		return next, Outcome{Applied: true}
	}

	// Chained expression: reduce "prev op cur" and carry the result forward.
	out := reduce(s)
	next := s
	next.PreviousOperand = domain.Operand(out.Result)
	next.Operator = op
	next.CurrentOperand = nil
	return next, out
}

func evaluate(s domain.State) (domain.State, Outcome) {
	if s.PreviousOperand == nil || s.CurrentOperand == nil || s.Operator == "" {
		return s, Outcome{}
	}

	out := reduce(s)
	next := s
	next.Overwrite = true
	next.PreviousOperand = nil
	next.Operator = ""
	next.CurrentOperand = domain.Operand(out.Result)
	return next, out
}

func deleteDigit(s domain.State) (domain.State, Outcome) {
	if s.Overwrite {
		return domain.State{}, Outcome{Applied: true}
	}
	if s.CurrentOperand == nil {
		return s, Outcome{}
	}

	cur := *s.CurrentOperand
	_, size := utf8.DecodeLastRuneInString(cur)
	next := s
	next.CurrentOperand = domain.Operand(cur[:len(cur)-size])
	return next, Outcome{Applied: true}
}

func reduce(s domain.State) Outcome {
	return Outcome{
		Applied:   true,
		Evaluated: true,
		Previous:  s.Previous(),
		Current:   s.Current(),
		Operator:  s.Operator,
		Result:    Evaluate(s.Previous(), s.Current(), s.Operator),
	}
}
