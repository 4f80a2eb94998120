package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/ntmtrace/internal/runtime"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aStar = []domain.Transition{
	{From: "q0", Read: "a", To: "q0", Write: "a", Move: domain.MoveRight},
	{From: "q0", Read: "_", To: "qAccept", Write: "_", Move: domain.MoveStay},
}

func trace(t *testing.T, hooks domain.LifecycleHooks, input string) {
	t.Helper()
	engine := runtime.NewEngine(runtime.NewTableResolver(aStar), runtime.WithLifecycleHooks(hooks))
	ctx := observability.WithMachine(context.Background(), "a_star")
	_, err := engine.Simulate(ctx, domain.InitialConfiguration("q0", domain.TapeFromString(input)), "qAccept", "qReject", 10)
	require.NoError(t, err)
}

func TestMetrics_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	trace(t, m.Hooks(), "aa")
	trace(t, m.Hooks(), "ab")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("a_star", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("a_star", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Halts.WithLabelValues("a_star", "implicit_reject")))
	// "aa" expands three configurations, "ab" one
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Expanded.WithLabelValues("a_star")))

	count, err := testutil.GatherAndCount(reg, "ntmtrace_run_depth")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCombine(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{OnOutcome: func(context.Context, *domain.OutcomeEvent) { order = append(order, "a") }}
	b := domain.LifecycleHooks{
		OnOutcome: func(context.Context, *domain.OutcomeEvent) { order = append(order, "b") },
		OnHalt:    func(context.Context, *domain.HaltEvent) { order = append(order, "halt") },
	}

	hooks := observability.Combine(a, domain.LifecycleHooks{}, b)
	assert.Nil(t, hooks.OnLevel)

	trace(t, hooks, "ab")
	assert.Equal(t, []string{"halt", "a", "b"}, order)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	trace(t, observability.LoggingHooks(logger), "ab")

	out := buf.String()
	assert.Contains(t, out, "machine=a_star")
	assert.Contains(t, out, "reason=implicit_reject")
	assert.Contains(t, out, "verdict=rejected")
}

func TestMachineFrom_Default(t *testing.T) {
	assert.Equal(t, "unknown", observability.MachineFrom(context.Background()))
}
