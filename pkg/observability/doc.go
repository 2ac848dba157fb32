// Package observability exposes Prometheus metrics for keypad engines.
//
// Metrics are fed by lifecycle hooks (see Metrics.Hooks) and by the store
// middleware in pkg/persistence/middleware.
package observability
