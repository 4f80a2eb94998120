package observability

import (
	"context"

	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	Runs       *prometheus.CounterVec
	Halts      *prometheus.CounterVec
	Expanded   *prometheus.CounterVec
	Depth      *prometheus.HistogramVec
	LevelWidth *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ntmtrace_runs_total",
				Help: "Total number of finished traces by verdict",
			},
			[]string{"machine", "verdict"},
		),
		Halts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ntmtrace_branch_halts_total",
				Help: "Branches that died without accepting, by reason",
			},
			[]string{"machine", "reason"},
		),
		Expanded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ntmtrace_configurations_expanded_total",
				Help: "Configurations that produced at least one successor",
			},
			[]string{"machine"},
		),
		Depth: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ntmtrace_run_depth",
				Help:    "Depth at which traces finished",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"machine"},
		),
		LevelWidth: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ntmtrace_level_width",
				Help:    "Number of configurations per expanded level",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"machine"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.Halts, m.Expanded, m.Depth, m.LevelWidth)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLevel: func(ctx context.Context, e *domain.LevelEvent) {
			m.LevelWidth.WithLabelValues(MachineFrom(ctx)).Observe(float64(e.Stats.Width))
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			m.Halts.WithLabelValues(MachineFrom(ctx), string(e.Reason)).Inc()
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			machine := MachineFrom(ctx)
			m.Runs.WithLabelValues(machine, string(e.Verdict)).Inc()
			m.Expanded.WithLabelValues(machine).Add(float64(e.Expanded))
			m.Depth.WithLabelValues(machine).Observe(float64(e.Depth))
		},
	}
}
