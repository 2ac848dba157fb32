package runner

import (
	"context"
	"strings"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
)

// Display is the two-line calculator screen.
type Display struct {
	// Previous is the previous operand followed by the pending operator.
	Previous string `json:"previous"`
	// Current is the operand being typed or the last result.
	Current string `json:"current"`
}

// NewDisplay renders the screen lines for state.
func NewDisplay(state domain.State) Display {
	return Display{
		Previous: strings.TrimSpace(state.Previous() + " " + state.Operator.String()),
		Current:  state.Current(),
	}
}

// Frame combines state and display for rich clients (Web, MCP, NDJSON).
type Frame struct {
	SessionID string       `json:"session_id,omitempty"`
	State     domain.State `json:"state"`
	Display   Display      `json:"display"`
}

// NewFrame builds the frame for a state.
func NewFrame(sessionID string, state domain.State) Frame {
	return Frame{
		SessionID: sessionID,
		State:     state,
		Display:   NewDisplay(state),
	}
}

// DispatchKeys parses keys, applies them to state and returns the resulting frame.
// No store is involved.
func DispatchKeys(ctx context.Context, engine ports.StatelessEngine, state domain.State, keys string) (*Frame, error) {
	actions, err := ParseKeys(keys)
	if err != nil {
		return nil, err
	}
	next, err := DispatchActions(ctx, engine, state, actions...)
	if err != nil {
		return nil, err
	}
	frame := NewFrame("", next)
	return &frame, nil
}

// ApplyKeys parses keys and applies them to a stored session.
func ApplyKeys(ctx context.Context, engine ports.SessionEngine, sessionID, keys string) (*Frame, error) {
	actions, err := ParseKeys(keys)
	if err != nil {
		return nil, err
	}
	next, err := engine.Apply(ctx, sessionID, actions...)
	if err != nil {
		return nil, err
	}
	frame := NewFrame(sessionID, next)
	return &frame, nil
}

// DispatchActions applies actions in order through engine.
func DispatchActions(ctx context.Context, engine ports.StatelessEngine, state domain.State, actions ...domain.Action) (domain.State, error) {
	for _, action := range actions {
		next, err := engine.Dispatch(ctx, state, action)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}
