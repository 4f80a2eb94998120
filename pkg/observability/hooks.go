package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

// Combine merges several hook sets into one. Each callback fans out to
// the non-nil callbacks of every set, in argument order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var (
		levels   []func(context.Context, *domain.LevelEvent)
		halts    []func(context.Context, *domain.HaltEvent)
		outcomes []func(context.Context, *domain.OutcomeEvent)
	)
	for _, s := range sets {
		if s.OnLevel != nil {
			levels = append(levels, s.OnLevel)
		}
		if s.OnHalt != nil {
			halts = append(halts, s.OnHalt)
		}
		if s.OnOutcome != nil {
			outcomes = append(outcomes, s.OnOutcome)
		}
	}

	var out domain.LifecycleHooks
	if len(levels) > 0 {
		out.OnLevel = func(ctx context.Context, e *domain.LevelEvent) {
			for _, fn := range levels {
				fn(ctx, e)
			}
		}
	}
	if len(halts) > 0 {
		out.OnHalt = func(ctx context.Context, e *domain.HaltEvent) {
			for _, fn := range halts {
				fn(ctx, e)
			}
		}
	}
	if len(outcomes) > 0 {
		out.OnOutcome = func(ctx context.Context, e *domain.OutcomeEvent) {
			for _, fn := range outcomes {
				fn(ctx, e)
			}
		}
	}
	return out
}

// LoggingHooks writes one structured line per level and per outcome.
// Branch halts are logged at debug level since wide trees produce many.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLevel: func(ctx context.Context, e *domain.LevelEvent) {
			logger.DebugContext(ctx, "level",
				"machine", MachineFrom(ctx),
				"depth", e.Stats.Depth,
				"width", e.Stats.Width,
				"explicit_rejects", e.Stats.ExplicitRejects,
				"implicit_rejects", e.Stats.ImplicitRejects,
				"successors", e.Stats.Successors,
			)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			logger.DebugContext(ctx, "branch halted",
				"machine", MachineFrom(ctx),
				"depth", e.Depth,
				"state", e.Configuration.State,
				"reason", e.Reason,
			)
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			logger.InfoContext(ctx, "trace finished",
				"machine", MachineFrom(ctx),
				"verdict", e.Verdict,
				"depth", e.Depth,
				"expanded", e.Expanded,
			)
		},
	}
}
