package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/keypad/internal/runtime"
	"github.com/aretw0/keypad/pkg/domain"
)

func TestEngine_Dispatch(t *testing.T) {
	engine := runtime.NewEngine()
	ctx := context.Background()

	state, err := engine.DispatchAll(ctx, domain.State{},
		domain.AddDigit("1"),
		domain.AddDigit("2"),
		domain.ChooseOperation(domain.OperatorDivide),
		domain.AddDigit("4"),
		domain.Evaluate(),
	)
	if err != nil {
		t.Fatalf("DispatchAll failed: %v", err)
	}
	if state.Current() != "3" || !state.Overwrite {
		t.Errorf("Expected evaluated '3' with overwrite, got %+v", state)
	}
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var actions []string
	var applied []bool
	var results []string
	var sessions []string

	hooks := domain.LifecycleHooks{
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			actions = append(actions, e.Action.String())
			applied = append(applied, e.Applied)
			sessions = append(sessions, e.SessionID)
		},
		OnEvaluate: func(ctx context.Context, e *domain.EvaluationEvent) {
			results = append(results, e.Previous+e.Operator.String()+e.Current+"="+e.Result)
		},
	}

	engine := runtime.NewEngine(runtime.WithLifecycleHooks(hooks))
	ctx := runtime.ContextWithSession(context.Background(), "sess-1")

	_, err := engine.DispatchAll(ctx, domain.State{},
		domain.Evaluate(), // no-op
		domain.AddDigit("3"),
		domain.ChooseOperation(domain.OperatorAdd),
		domain.AddDigit("4"),
		domain.ChooseOperation(domain.OperatorMultiply), // chained evaluation
		domain.AddDigit("2"),
		domain.Evaluate(),
	)
	if err != nil {
		t.Fatalf("DispatchAll failed: %v", err)
	}

	if len(actions) != 7 {
		t.Fatalf("Expected 7 action events, got %d: %v", len(actions), actions)
	}
	if applied[0] {
		t.Errorf("Expected first Evaluate to be reported as no-op")
	}
	if sessions[0] != "sess-1" {
		t.Errorf("Expected session id from context, got %q", sessions[0])
	}

	want := []string{"3+4=7", "7*2=14"}
	if len(results) != len(want) {
		t.Fatalf("Expected evaluations %v, got %v", want, results)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("evaluation %d: expected %q, got %q", i, want[i], results[i])
		}
	}
}

func TestEngine_MalformedActions(t *testing.T) {
	ctx := context.Background()
	state := domain.State{CurrentOperand: domain.Operand("5")}
	bad := domain.Action{Type: "square-root"}

	t.Run("Lenient mode ignores", func(t *testing.T) {
		engine := runtime.NewEngine()
		next, err := engine.Dispatch(ctx, state, bad)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if next.Current() != "5" {
			t.Errorf("Expected unchanged state, got %+v", next)
		}
	})

	t.Run("Strict mode rejects", func(t *testing.T) {
		engine := runtime.NewEngine(runtime.WithStrictActions(true))
		_, err := engine.Dispatch(ctx, state, bad)
		if !errors.Is(err, domain.ErrInvalidAction) {
			t.Errorf("Expected ErrInvalidAction, got %v", err)
		}
	})
}

func TestEngine_CanceledContext(t *testing.T) {
	engine := runtime.NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Dispatch(ctx, domain.State{}, domain.AddDigit("1"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
