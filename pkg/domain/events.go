package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventAction   EventType = "action"
	EventEvaluate EventType = "evaluate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// ActionEvent is emitted for every dispatched action.
type ActionEvent struct {
	EventBase
	Action Action `json:"action"`
	// Applied is false when the action was a no-op.
	Applied bool `json:"applied"`
}

// EvaluationEvent is emitted whenever a pending expression is reduced,
// either by Evaluate or by chaining a second operator.
type EvaluationEvent struct {
	EventBase
	Previous string   `json:"previous"`
	Current  string   `json:"current"`
	Operator Operator `json:"operator"`
	Result   string   `json:"result"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnAction   func(context.Context, *ActionEvent)
	OnEvaluate func(context.Context, *EvaluationEvent)
}

// Merge returns hooks that invoke h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnAction: func(ctx context.Context, e *ActionEvent) {
			if h.OnAction != nil {
				h.OnAction(ctx, e)
			}
			if other.OnAction != nil {
				other.OnAction(ctx, e)
			}
		},
		OnEvaluate: func(ctx context.Context, e *EvaluationEvent) {
			if h.OnEvaluate != nil {
				h.OnEvaluate(ctx, e)
			}
			if other.OnEvaluate != nil {
				other.OnEvaluate(ctx, e)
			}
		},
	}
}
