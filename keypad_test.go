package keypad_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/pkg/adapters/memory"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Stateless(t *testing.T) {
	eng, err := keypad.New()
	require.NoError(t, err)

	state, err := eng.DispatchAll(context.Background(), domain.State{},
		domain.AddDigit("3"),
		domain.ChooseOperation(domain.OperatorAdd),
		domain.AddDigit("4"),
		domain.ChooseOperation(domain.OperatorSubtract),
	)
	require.NoError(t, err)

	assert.Equal(t, "7", state.Previous())
	assert.Equal(t, domain.OperatorSubtract, state.Operator)
	assert.Nil(t, state.CurrentOperand)
}

func TestEngine_Sessions(t *testing.T) {
	store := memory.NewStore()
	eng, err := keypad.New(keypad.WithStore(store))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.Load(ctx, "desk")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	state, err := eng.Start(ctx, "desk")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())

	_, err = eng.Apply(ctx, "desk", domain.AddDigit("1"), domain.AddDigit("2"))
	require.NoError(t, err)
	state, err = eng.Apply(ctx, "desk",
		domain.ChooseOperation(domain.OperatorMultiply),
		domain.AddDigit("3"),
		domain.Evaluate(),
	)
	require.NoError(t, err)
	assert.Equal(t, "36", state.Current())
	assert.True(t, state.Overwrite)

	loaded, err := eng.Load(ctx, "desk")
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	ids, err := eng.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"desk"}, ids)

	require.NoError(t, eng.Reset(ctx, "desk"))
	_, err = eng.Load(ctx, "desk")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_ApplyConcurrent(t *testing.T) {
	eng, err := keypad.New()
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Apply(ctx, "shared", domain.AddDigit("1"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := eng.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, "11111111111111111111", state.Current())
}

func TestEngine_HooksCarrySession(t *testing.T) {
	var results []string
	var sessions []string
	hooks := domain.LifecycleHooks{
		OnEvaluate: func(ctx context.Context, e *domain.EvaluationEvent) {
			results = append(results, e.Result)
			sessions = append(sessions, e.SessionID)
		},
	}

	eng, err := keypad.New(keypad.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	_, err = eng.Apply(context.Background(), "s1",
		domain.AddDigit("4"),
		domain.ChooseOperation(domain.OperatorDivide),
		domain.AddDigit("0"),
		domain.Evaluate(),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"Infinity"}, results)
	assert.Equal(t, []string{"s1"}, sessions)
}

func TestEngine_StrictActions(t *testing.T) {
	eng, err := keypad.New(keypad.WithStrictActions(true))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.Apply(ctx, "s", domain.AddDigit("7"), domain.AddDigit("x"))
	assert.True(t, errors.Is(err, domain.ErrInvalidAction))

	// The failed batch must not be persisted.
	state, err := eng.Load(ctx, "s")
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestEngine_WatchUnsupported(t *testing.T) {
	eng, err := keypad.New()
	require.NoError(t, err)

	_, err = eng.Watch(context.Background())
	assert.Error(t, err)
}
