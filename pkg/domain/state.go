package domain

// State represents the calculator display at a point in time.
// It is a value type: transitions return a new State and never mutate the receiver.
type State struct {
	// CurrentOperand is the digit sequence being typed.
	// nil means absent; an empty string is present but renders blank.
	CurrentOperand *string `json:"current_operand,omitempty"`

	// PreviousOperand is the operand captured before an operator was chosen.
	PreviousOperand *string `json:"previous_operand,omitempty"`

	// Operator is the pending operator. The zero value means no operator.
	Operator Operator `json:"operator,omitempty"`

	// Overwrite is set right after an evaluation so the next digit starts a fresh operand.
	Overwrite bool `json:"overwrite,omitempty"`
}

// Operand returns a present operand holding v.
func Operand(v string) *string {
	return &v
}

// IsEmpty reports whether s is the initial (cleared) state.
func (s State) IsEmpty() bool {
	return s.CurrentOperand == nil && s.PreviousOperand == nil && s.Operator == "" && !s.Overwrite
}

// Current returns the current operand, or "" when absent.
func (s State) Current() string {
	if s.CurrentOperand == nil {
		return ""
	}
	return *s.CurrentOperand
}

// Previous returns the previous operand, or "" when absent.
func (s State) Previous() string {
	if s.PreviousOperand == nil {
		return ""
	}
	return *s.PreviousOperand
}

// Snapshot returns a deep copy of the state.
func (s State) Snapshot() State {
	out := s
	if s.CurrentOperand != nil {
		out.CurrentOperand = Operand(*s.CurrentOperand)
	}
	if s.PreviousOperand != nil {
		out.PreviousOperand = Operand(*s.PreviousOperand)
	}
	return out
}
