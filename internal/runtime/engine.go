package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/calculator"
	"github.com/aretw0/keypad/pkg/domain"
)

// Engine is the core keypad runner. It wraps the pure reducer with
// validation, logging and lifecycle hooks. It holds no session state.
type Engine struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	strict bool
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStrictActions makes Dispatch reject malformed actions with domain.ErrInvalidAction
// instead of treating them as no-ops.
func WithStrictActions(strict bool) EngineOption {
	return func(e *Engine) {
		e.strict = strict
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatch applies action to state and returns the next state.
// It only fails when ctx is done or, in strict mode, when the action is malformed.
func (e *Engine) Dispatch(ctx context.Context, state domain.State, action domain.Action) (domain.State, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}

	if err := action.Validate(); err != nil {
		if e.strict {
			return state, err
		}
		e.logger.Debug("Ignoring malformed action", "action", action.Type, "err", err)
	}

	next, out := calculator.Step(state, action)
	sessionID := SessionFromContext(ctx)

	e.logger.Debug("Action dispatched",
		"session_id", sessionID,
		"action", action.Type,
		"key", action.String(),
		"applied", out.Applied,
	)

	if e.hooks.OnAction != nil {
		e.hooks.OnAction(ctx, &domain.ActionEvent{
			EventBase: e.event(domain.EventAction, sessionID),
			Action:    action,
			Applied:   out.Applied,
		})
	}

	if out.Evaluated {
		e.logger.Debug("Expression evaluated",
			"session_id", sessionID,
			"expression", out.Previous+" "+out.Operator.String()+" "+out.Current,
			"result", out.Result,
		)
		if e.hooks.OnEvaluate != nil {
			e.hooks.OnEvaluate(ctx, &domain.EvaluationEvent{
				EventBase: e.event(domain.EventEvaluate, sessionID),
				Previous:  out.Previous,
				Current:   out.Current,
				Operator:  out.Operator,
				Result:    out.Result,
			})
		}
	}

	return next, nil
}

// DispatchAll applies actions in order, stopping at the first error.
func (e *Engine) DispatchAll(ctx context.Context, state domain.State, actions ...domain.Action) (domain.State, error) {
	for _, action := range actions {
		next, err := e.Dispatch(ctx, state, action)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}

func (e *Engine) event(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		SessionID: sessionID,
	}
}
