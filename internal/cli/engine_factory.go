package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/internal/config"
	"github.com/aretw0/keypad/pkg/adapters/file"
	"github.com/aretw0/keypad/pkg/adapters/memory"
	"github.com/aretw0/keypad/pkg/adapters/redis"
	"github.com/aretw0/keypad/pkg/observability"
	"github.com/aretw0/keypad/pkg/persistence/middleware"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// redisDialTimeout bounds the startup ping to Redis.
const redisDialTimeout = 3 * time.Second

// Host bundles an engine with the resources a CLI command has to release.
type Host struct {
	Engine   *keypad.Engine
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closers []func() error
}

// Close releases store connections.
func (h *Host) Close() error {
	var errs []error
	for _, c := range h.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewHost initializes a keypad engine from cfg with standard CLI conventions:
// the configured store wrapped with logging and metrics middleware, a Redis
// locker when the backend is Redis, and metrics (plus debug logging) hooks.
func NewHost(ctx context.Context, cfg config.Config, logger *slog.Logger, debug bool) (*Host, error) {
	h := &Host{
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	}
	h.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := observability.NewMetrics(h.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	h.Metrics = metrics

	store, locker, err := h.createStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	store = middleware.Chain(store,
		middleware.NewLoggingMiddleware(logger),
		middleware.NewMetricsMiddleware(metrics),
	)

	hooks := metrics.Hooks()
	if debug {
		hooks = hooks.Merge(createDebugHooks(logger))
	}

	opts := []keypad.Option{
		keypad.WithStore(store),
		keypad.WithLogger(logger),
		keypad.WithLifecycleHooks(hooks),
		keypad.WithLockTTL(cfg.Session.LockTTL),
	}
	if locker != nil {
		opts = append(opts, keypad.WithLocker(locker))
	}

	eng, err := keypad.New(opts...)
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	h.Engine = eng
	return h, nil
}

func (h *Host) createStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.StateStore, ports.DistributedLocker, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil

	case config.BackendFile:
		store := file.New(cfg.Store.Dir)
		store.Logger = logger
		return store, nil, nil

	case config.BackendRedis:
		rc := cfg.Store.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB,
			redis.WithPrefix(rc.Prefix),
			redis.WithTTL(rc.TTL),
		)
		h.closers = append(h.closers, store.Close)

		pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
		defer cancel()
		if err := store.Client().Ping(pingCtx).Err(); err != nil {
			_ = h.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		logger.Debug("Connected to redis", "addr", rc.Addr, "db", rc.DB)
		return store, redis.NewLocker(store.Client(), rc.Prefix), nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
