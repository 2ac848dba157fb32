package domain

import "fmt"

// ActionType identifies a user action on the keypad.
type ActionType string

// Standard Action Types
const (
	// ActionAddDigit appends a digit or decimal point. Payload: Digit.
	ActionAddDigit ActionType = "add-digit"

	// ActionChooseOperation selects the pending operator. Payload: Operator.
	ActionChooseOperation ActionType = "choose-operation"

	// ActionEvaluate computes the pending expression.
	ActionEvaluate ActionType = "evaluate"

	// ActionClear resets the display.
	ActionClear ActionType = "clear"

	// ActionDeleteDigit removes the last typed character.
	ActionDeleteDigit ActionType = "delete-digit"
)

// Action is a tagged variant over the five keypad actions.
// Only the payload field matching Type is meaningful.
type Action struct {
	Type     ActionType `json:"type"`
	Digit    string     `json:"digit,omitempty"`
	Operator Operator   `json:"operator,omitempty"`
}

// AddDigit builds an ActionAddDigit for d ("0"-"9" or ".").
func AddDigit(d string) Action {
	return Action{Type: ActionAddDigit, Digit: d}
}

// ChooseOperation builds an ActionChooseOperation for op.
func ChooseOperation(op Operator) Action {
	return Action{Type: ActionChooseOperation, Operator: op}
}

// Evaluate builds an ActionEvaluate.
func Evaluate() Action {
	return Action{Type: ActionEvaluate}
}

// Clear builds an ActionClear.
func Clear() Action {
	return Action{Type: ActionClear}
}

// DeleteDigit builds an ActionDeleteDigit.
func DeleteDigit() Action {
	return Action{Type: ActionDeleteDigit}
}

// IsDigit reports whether d is a single keypad digit or the decimal point.
func IsDigit(d string) bool {
	return len(d) == 1 && (d == "." || (d[0] >= '0' && d[0] <= '9'))
}

// Validate checks that the action is well formed.
// The reducer treats malformed actions as no-ops; hosts use Validate to reject them early.
func (a Action) Validate() error {
	switch a.Type {
	case ActionAddDigit:
		if !IsDigit(a.Digit) {
			return fmt.Errorf("%w: digit %q", ErrInvalidAction, a.Digit)
		}
	case ActionChooseOperation:
		if !a.Operator.Valid() {
			return fmt.Errorf("%w: operator %q", ErrInvalidAction, a.Operator)
		}
	case ActionEvaluate, ActionClear, ActionDeleteDigit:
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidAction, a.Type)
	}
	return nil
}

func (a Action) String() string {
	switch a.Type {
	case ActionAddDigit:
		return a.Digit
	case ActionChooseOperation:
		return a.Operator.String()
	case ActionEvaluate:
		return "="
	case ActionClear:
		return "AC"
	case ActionDeleteDigit:
		return "DEL"
	}
	return string(a.Type)
}
