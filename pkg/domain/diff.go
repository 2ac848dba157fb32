package domain

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentOperand  *FieldChange `json:"current_operand,omitempty"`
	PreviousOperand *FieldChange `json:"previous_operand,omitempty"`
	Operator        *FieldChange `json:"operator,omitempty"`

	Overwrite *bool `json:"overwrite,omitempty"`
}

// FieldChange carries the new value of a changed field.
// A nil Value means the field became absent.
type FieldChange struct {
	Value *string `json:"value"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(sessionID string, oldState *State, newState State) *StateDiff {
	var old State
	if oldState != nil {
		old = *oldState
	}

	diff := &StateDiff{SessionID: sessionID}

	if oldState == nil || !sameOperand(old.CurrentOperand, newState.CurrentOperand) {
		diff.CurrentOperand = &FieldChange{Value: newState.CurrentOperand}
	}
	if oldState == nil || !sameOperand(old.PreviousOperand, newState.PreviousOperand) {
		diff.PreviousOperand = &FieldChange{Value: newState.PreviousOperand}
	}
	if oldState == nil || old.Operator != newState.Operator {
		var op *string
		if newState.Operator != "" {
			op = Operand(string(newState.Operator))
		}
		diff.Operator = &FieldChange{Value: op}
	}
	if oldState == nil || old.Overwrite != newState.Overwrite {
		overwrite := newState.Overwrite
		diff.Overwrite = &overwrite
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func sameOperand(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentOperand == nil &&
		d.PreviousOperand == nil &&
		d.Operator == nil &&
		d.Overwrite == nil
}

// Touches reports whether the diff changes the named field group.
// Known groups: "operands", "operator", "overwrite".
func (d *StateDiff) Touches(field string) bool {
	switch field {
	case "operands":
		return d.CurrentOperand != nil || d.PreviousOperand != nil
	case "operator":
		return d.Operator != nil
	case "overwrite":
		return d.Overwrite != nil
	}
	return false
}
