package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/ntmtrace/internal/logging"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/ports"
)

// Engine is the breadth-first core. It is stateless between runs: the
// configuration tree and its ancestry live only inside one Simulate call.
type Engine struct {
	resolver ports.TransitionResolver
	blank    domain.Symbol
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithBlank sets the symbol read past the written extent of the tape.
func WithBlank(blank domain.Symbol) EngineOption {
	return func(e *Engine) {
		if blank != "" {
			e.blank = blank
		}
	}
}

// NewEngine creates a new engine over a transition resolver.
func NewEngine(resolver ports.TransitionResolver, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver: resolver,
		blank:    domain.DefaultBlank,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Blank returns the blank symbol used by the engine.
func (e *Engine) Blank() domain.Symbol {
	return e.blank
}

// Simulate expands the configuration tree level by level, starting from
// initial, for at most maxDepth levels.
//
// The first configuration in accept state, in scan order, wins and its path
// is rebuilt from the ancestry record. A level that produces no successors
// yields VerdictRejected. Reaching maxDepth yields VerdictUndecided.
// The context is only forwarded to hooks; it never stops the search.
func (e *Engine) Simulate(ctx context.Context, initial domain.Configuration, accept, reject string, maxDepth int) (*domain.Result, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidDepth, maxDepth)
	}

	tree := NewAncestry()
	current := []domain.Configuration{tree.Add(initial, domain.NoParent)}
	result := &domain.Result{MaxDepth: maxDepth}

	for depth := 0; depth < maxDepth; depth++ {
		stats := domain.LevelStats{Depth: depth, Width: len(current)}
		var next []domain.Configuration

		for _, cfg := range current {
			stats.Scanned++

			if cfg.State == accept {
				result.Levels = append(result.Levels, stats)
				e.emitLevel(ctx, stats)
				return e.accept(ctx, result, tree, cfg, depth)
			}

			if reject != "" && cfg.State == reject {
				stats.ExplicitRejects++
				e.emitHalt(ctx, depth, cfg, domain.HaltExplicit)
				continue
			}

			rules := e.resolver.Resolve(cfg.State, cfg.Head(e.blank))
			if len(rules) == 0 {
				stats.ImplicitRejects++
				e.emitHalt(ctx, depth, cfg, domain.HaltImplicit)
				continue
			}

			for _, t := range rules {
				child := cfg.Successor(t.To, t.Write, t.Move, e.blank)
				next = append(next, tree.Add(child, cfg.ID))
			}
			stats.Successors += len(rules)
			result.Expanded++
		}

		result.Levels = append(result.Levels, stats)
		e.emitLevel(ctx, stats)

		if len(next) == 0 {
			return e.finish(ctx, result, domain.VerdictRejected, depth), nil
		}
		current = next
	}

	return e.finish(ctx, result, domain.VerdictUndecided, maxDepth), nil
}

func (e *Engine) accept(ctx context.Context, result *domain.Result, tree *Ancestry, cfg domain.Configuration, depth int) (*domain.Result, error) {
	path, err := tree.Reconstruct(cfg.ID)
	if err != nil {
		e.logger.Error("ancestry out of sync with expanded tree", "depth", depth, "err", err)
		return nil, err
	}
	if len(path) != depth+1 {
		err := &domain.ReconstructionError{
			ID:     cfg.ID,
			Reason: fmt.Sprintf("path has %d configurations, want %d", len(path), depth+1),
		}
		e.logger.Error("ancestry out of sync with expanded tree", "depth", depth, "err", err)
		return nil, err
	}
	result.Path = path
	return e.finish(ctx, result, domain.VerdictAccepted, depth), nil
}

func (e *Engine) finish(ctx context.Context, result *domain.Result, verdict domain.Verdict, depth int) *domain.Result {
	result.Verdict = verdict
	result.Depth = depth

	e.logger.Debug("trace finished",
		"verdict", verdict,
		"depth", depth,
		"max_depth", result.MaxDepth,
		"expanded", result.Expanded,
	)

	if e.hooks.OnOutcome != nil {
		e.hooks.OnOutcome(ctx, &domain.OutcomeEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventOutcome},
			Verdict:   verdict,
			Depth:     depth,
			Expanded:  result.Expanded,
		})
	}
	return result
}

func (e *Engine) emitLevel(ctx context.Context, stats domain.LevelStats) {
	e.logger.Debug("level expanded",
		"depth", stats.Depth,
		"width", stats.Width,
		"successors", stats.Successors,
	)
	if e.hooks.OnLevel != nil {
		e.hooks.OnLevel(ctx, &domain.LevelEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventLevel},
			Stats:     stats,
		})
	}
}

func (e *Engine) emitHalt(ctx context.Context, depth int, cfg domain.Configuration, reason domain.HaltReason) {
	if e.hooks.OnHalt != nil {
		e.hooks.OnHalt(ctx, &domain.HaltEvent{
			EventBase:     domain.EventBase{Timestamp: time.Now(), Type: domain.EventHalt},
			Depth:         depth,
			Configuration: cfg,
			Reason:        reason,
		})
	}
}
