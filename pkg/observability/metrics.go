package observability

import (
	"context"
	"errors"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes used as the "outcome" label.
const (
	OutcomeHalted   = "halted"
	OutcomeRejected = "rejected"
)

// Metrics records engine activity as Prometheus collectors.
type Metrics struct {
	Steps    *prometheus.CounterVec
	Runs     *prometheus.CounterVec
	RunSteps *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_steps_total",
				Help: "Total number of transitions applied",
			},
			[]string{"machine"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_runs_total",
				Help: "Total number of finished runs by outcome",
			},
			[]string{"machine", "outcome"},
		),
		RunSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turing_run_steps",
				Help:    "Number of steps of finished runs",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"machine"},
		),
	}
	var err error
	if m.Steps, err = register(reg, m.Steps); err != nil {
		return nil, err
	}
	if m.Runs, err = register(reg, m.Runs); err != nil {
		return nil, err
	}
	if m.RunSteps, err = register(reg, m.RunSteps); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the collector already registered under the same name, if any,
// so several servers in one process share their metrics.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.Machine).Inc()
		},
		OnHalt: func(_ context.Context, e *domain.HaltEvent) {
			m.finish(e, OutcomeHalted)
		},
		OnReject: func(_ context.Context, e *domain.HaltEvent) {
			m.finish(e, OutcomeRejected)
		},
	}
}

func (m *Metrics) finish(e *domain.HaltEvent, outcome string) {
	m.Runs.WithLabelValues(e.Machine, outcome).Inc()
	m.RunSteps.WithLabelValues(e.Machine).Observe(float64(e.Steps))
}
