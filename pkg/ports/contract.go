package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/keypad/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.State{
			PreviousOperand: domain.Operand("12.5"),
			Operator:        domain.OperatorDivide,
			CurrentOperand:  domain.Operand("4"),
		}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state, loaded)
	})

	t.Run("Empty Operand Survives", func(t *testing.T) {
		id := sessionID + "-empty"
		defer func() { _ = store.Delete(ctx, id) }()

		state := domain.State{CurrentOperand: domain.Operand("")}
		require.NoError(t, store.Save(ctx, id, state))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, loaded.CurrentOperand, "empty operand must not decay to absent")
		assert.Equal(t, "", *loaded.CurrentOperand)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.State{CurrentOperand: domain.Operand("1")}))
		require.NoError(t, store.Save(ctx, sessionID, domain.State{CurrentOperand: domain.Operand("7"), Overwrite: true}))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "7", loaded.Current())
		assert.True(t, loaded.Overwrite)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.State{})
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.State{})
		_ = store.Save(ctx, id2, domain.State{})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
