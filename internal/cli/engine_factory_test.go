package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/keypad/internal/config"
	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost(t *testing.T, mutate func(*config.Config)) *Host {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	if mutate != nil {
		mutate(&cfg)
	}

	host, err := NewHost(context.Background(), cfg, logging.NewNop(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = host.Close() })
	return host
}

func TestNewHost_Backends(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name      string
		mutate    func(*config.Config)
		watchable bool
	}{
		{"Memory", nil, false},
		{"File", func(c *config.Config) {
			c.Store.Backend = config.BackendFile
			c.Store.Dir = t.TempDir()
		}, true},
		{"Redis", func(c *config.Config) {
			c.Store.Backend = config.BackendRedis
			c.Store.Redis.Addr = mr.Addr()
			c.Store.Redis.TTL = time.Hour
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newTestHost(t, tt.mutate)
			ctx := context.Background()

			state, err := host.Engine.Apply(ctx, "desk", domain.AddDigit("6"), domain.ChooseOperation(domain.OperatorMultiply),
				domain.AddDigit("7"), domain.Evaluate())
			require.NoError(t, err)
			assert.Equal(t, "42", state.Current())

			loaded, err := host.Engine.Load(ctx, "desk")
			require.NoError(t, err)
			assert.Equal(t, "42", loaded.Current())

			_, ok := host.Engine.Store().(ports.Watchable)
			assert.Equal(t, tt.watchable, ok)

			assert.Equal(t, 1.0, testutil.ToFloat64(host.Metrics.Evaluations.WithLabelValues("*", "finite")))
		})
	}
}

func TestNewHost_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Store.Backend = config.BackendRedis
	cfg.Store.Redis.Addr = addr

	_, err := NewHost(context.Background(), cfg, logging.NewNop(), false)
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestNewHost_RegistryGathers(t *testing.T) {
	host := newTestHost(t, nil)

	_, err := host.Engine.Apply(context.Background(), "s", domain.AddDigit("1"))
	require.NoError(t, err)

	families, err := host.Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["keypad_actions_total"])
	assert.True(t, names["keypad_store_operation_duration_seconds"])
	assert.True(t, names["go_goroutines"])
}

func TestEval(t *testing.T) {
	host := newTestHost(t, nil)

	var out bytes.Buffer
	require.NoError(t, Eval(context.Background(), host.Engine, "12+3", false, &out))
	assert.Equal(t, "12 +\n3\n", out.String())

	out.Reset()
	require.NoError(t, Eval(context.Background(), host.Engine, "4/0=", true, &out))
	assert.Contains(t, out.String(), `"current_operand":"Infinity"`)

	err := Eval(context.Background(), host.Engine, "2^2", false, &out)
	assert.ErrorIs(t, err, domain.ErrUnknownKey)
}
