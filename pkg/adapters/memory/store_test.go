package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/keypad/pkg/adapters/memory"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	state := domain.State{CurrentOperand: domain.Operand("42")}
	require.NoError(t, store.Save(ctx, "s1", state))

	// Mutating the caller's operand must not leak into the store
	*state.CurrentOperand = "99"

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "42", loaded.Current())

	*loaded.CurrentOperand = "0"
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "42", again.Current())
}
