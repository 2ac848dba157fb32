package observability

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/aretw0/keypad/pkg/calculator"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Result classes recorded for evaluations.
const (
	ResultFinite   = "finite"
	ResultInfinite = "infinite"
	ResultNaN      = "nan"
	ResultInvalid  = "invalid"
)

// Metrics holds the Prometheus collectors for a keypad engine.
type Metrics struct {
	Actions       *prometheus.CounterVec
	Evaluations   *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
	StoreErrors   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keypad_actions_total",
				Help: "Total number of dispatched actions by type and outcome (applied or noop)",
			},
			[]string{"type", "outcome"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keypad_evaluations_total",
				Help: "Total number of reduced expressions by operator and result class",
			},
			[]string{"operator", "result_class"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "keypad_store_operation_duration_seconds",
				Help:    "Duration of session store operations",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"operation"},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keypad_store_errors_total",
				Help: "Total number of failed session store operations, excluding not-found loads",
			},
			[]string{"operation"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Actions, m.Evaluations, m.StoreDuration, m.StoreErrors} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the action and evaluation counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAction: func(_ context.Context, e *domain.ActionEvent) {
			outcome := "noop"
			if e.Applied {
				outcome = "applied"
			}
			m.Actions.WithLabelValues(string(e.Action.Type), outcome).Inc()
		},
		OnEvaluate: func(_ context.Context, e *domain.EvaluationEvent) {
			m.Evaluations.WithLabelValues(e.Operator.String(), ClassifyResult(e.Result)).Inc()
		},
	}
}

// ObserveStore records the latency and failure of a store operation.
func (m *Metrics) ObserveStore(operation string, started time.Time, err error) {
	m.StoreDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		m.StoreErrors.WithLabelValues(operation).Inc()
	}
}

// ClassifyResult buckets an evaluator result for the result_class label.
func ClassifyResult(result string) string {
	if result == "" {
		return ResultInvalid
	}
	f := calculator.ParseFloat(result)
	switch {
	case math.IsNaN(f):
		return ResultNaN
	case math.IsInf(f, 0):
		return ResultInfinite
	default:
		return ResultFinite
	}
}
