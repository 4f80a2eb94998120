package ports

import (
	"context"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

// TransitionResolver is the state/transition lookup capability.
// Resolve returns every rule for (state, read) in declaration order and an
// empty slice when none applies. Implementations are pure lookups.
type TransitionResolver interface {
	Resolve(state string, read domain.Symbol) []domain.Transition
}

// Simulator defines the breadth-first core.
type Simulator interface {
	Simulate(ctx context.Context, initial domain.Configuration, accept, reject string, maxDepth int) (*domain.Result, error)
}

// TraceSink receives human-readable trace records.
// Sinks observe a finished trace; a failing sink never changes its verdict.
type TraceSink interface {
	Emit(ctx context.Context, rec domain.Record) error
}
