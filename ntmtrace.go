package ntmtrace

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/loam"
	"github.com/aretw0/ntmtrace/internal/compiler"
	"github.com/aretw0/ntmtrace/internal/config"
	"github.com/aretw0/ntmtrace/internal/logging"
	"github.com/aretw0/ntmtrace/internal/presentation/graph"
	"github.com/aretw0/ntmtrace/internal/runtime"
	"github.com/aretw0/ntmtrace/internal/validator"
	"github.com/aretw0/ntmtrace/pkg/adapters/file"
	loamAdapter "github.com/aretw0/ntmtrace/pkg/adapters/loam"
	"github.com/aretw0/ntmtrace/pkg/adapters/memory"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/observability"
	"github.com/aretw0/ntmtrace/pkg/ports"
	"github.com/aretw0/ntmtrace/pkg/report"
	"github.com/aretw0/ntmtrace/pkg/runs"
)

// Tracer is the high-level entry point of the library.
// It loads, compiles and validates machines on demand and runs traces
// through a run manager so that reports are stored and repeated requests
// are answered from the store.
type Tracer struct {
	loader      ports.MachineLoader
	parser      *compiler.Parser
	runs        *runs.Manager
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	useLoam     bool
	strictInput bool
	Name        string

	mu       sync.RWMutex
	compiled map[string]*compiledMachine
}

type compiledMachine struct {
	machine *domain.Machine
	sim     ports.Simulator
}

// Option defines a functional option for configuring the Tracer.
type Option func(*Tracer)

// WithLoader injects a custom MachineLoader, bypassing directory loading.
func WithLoader(l ports.MachineLoader) Option {
	return func(t *Tracer) {
		t.loader = l
	}
}

// WithLoam reads machines as Loam documents (Markdown frontmatter, YAML or
// JSON) instead of plain machine files.
func WithLoam() Option {
	return func(t *Tracer) {
		t.useLoam = true
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracer) {
		t.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on every engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tracer) {
		t.hooks = hooks
	}
}

// WithRunManager sets the manager that stores reports. The default keeps
// them in memory.
func WithRunManager(m *runs.Manager) Option {
	return func(t *Tracer) {
		t.runs = m
	}
}

// WithStrictInput rejects input words containing symbols outside the
// machine's input alphabet. By default they are only logged.
func WithStrictInput(strict bool) Option {
	return func(t *Tracer) {
		t.strictInput = strict
	}
}

// New initializes a Tracer reading machines from dir.
// If WithLoader is provided, dir can be empty and is only used as a label.
func New(dir string, opts ...Option) (*Tracer, error) {
	t := &Tracer{
		parser:   compiler.NewParser(),
		compiled: make(map[string]*compiledMachine),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.loader == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom loader is provided")
		}
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		t.Name = filepath.Base(absPath)

		if t.useLoam {
			// The tracer never writes definitions.
			repo, err := loam.Init(absPath,
				loam.WithStrict(true),
				loam.WithReadOnly(true),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize loam: %w", err)
			}
			t.loader = loamAdapter.New(loam.NewTypedRepository[loamAdapter.MachineMetadata](repo))
		} else {
			t.loader = file.NewLoader(absPath, config.FileNames...)
		}
	} else if dir != "" {
		t.Name = filepath.Base(dir)
	}

	if t.logger == nil {
		t.logger = logging.NewNop()
	}
	if t.runs == nil {
		t.runs = runs.NewManager(memory.NewStore(), runs.WithLogger(t.logger))
	}
	return t, nil
}

// Machines lists the available machine names.
func (t *Tracer) Machines() ([]string, error) {
	return t.loader.ListMachines()
}

// Machine loads, parses and validates a machine definition.
func (t *Tracer) Machine(name string) (*domain.Machine, error) {
	c, err := t.compile(name)
	if err != nil {
		return nil, err
	}
	return c.machine, nil
}

func (t *Tracer) compile(name string) (*compiledMachine, error) {
	t.mu.RLock()
	c, ok := t.compiled[name]
	t.mu.RUnlock()
	if ok {
		return c, nil
	}

	raw, err := t.loader.GetMachine(name)
	if err != nil {
		return nil, err
	}
	m, err := t.parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: machine %s: %v", domain.ErrInvalidMachine, name, err)
	}
	if err := validator.ValidateMachine(m); err != nil {
		return nil, err
	}
	if unreachable := validator.Unreachable(m); len(unreachable) > 0 {
		t.logger.Debug("machine has unreachable states", "machine", m.Name, "states", unreachable)
	}

	engine := runtime.NewEngine(
		runtime.NewTableResolver(m.Transitions),
		runtime.WithBlank(m.Blank),
		runtime.WithLogger(t.logger.With("machine", m.Name)),
		runtime.WithLifecycleHooks(t.hooks),
	)
	c = &compiledMachine{machine: m, sim: engine}

	t.mu.Lock()
	t.compiled[name] = c
	t.mu.Unlock()
	return c, nil
}

// Trace runs (or recalls) a bounded breadth-first trace of input on the
// named machine and returns the stored report.
func (t *Tracer) Trace(ctx context.Context, machine, input string, maxDepth int) (*domain.Report, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidDepth, maxDepth)
	}
	c, err := t.compile(machine)
	if err != nil {
		return nil, err
	}
	m := c.machine

	if err := validator.ValidateInput(m, input); err != nil {
		if t.strictInput {
			return nil, err
		}
		t.logger.Warn("input outside the input alphabet", "machine", m.Name, "err", err)
	}

	req := runs.Request{
		Machine:     machine,
		Input:       input,
		MaxDepth:    maxDepth,
		Blank:       m.Blank,
		AcceptState: m.Accept,
	}
	rep, cached, err := t.runs.Execute(ctx, req, func(ctx context.Context) (*domain.Result, error) {
		ctx = observability.WithMachine(ctx, machine)
		return c.sim.Simulate(ctx, m.Initial(input), m.Accept, m.Reject, maxDepth)
	})
	if err != nil {
		return nil, err
	}
	t.logger.Info("trace",
		"machine", machine,
		"run_id", rep.ID,
		"verdict", rep.Result.Verdict,
		"depth", rep.Result.Depth,
		"cached", cached,
	)
	return rep, nil
}

// Emit writes the human-readable trace of rep to every sink.
func (t *Tracer) Emit(ctx context.Context, rep *domain.Report, sinks ...ports.TraceSink) error {
	return report.Emit(ctx, report.Multi(sinks), report.Records(rep.Machine, rep.Input, &rep.Result))
}

// Graph renders the machine as a Mermaid diagram, highlighting the
// accepting path of rep when given.
func (t *Tracer) Graph(name string, rep *domain.Report) (string, error) {
	m, err := t.Machine(name)
	if err != nil {
		return "", err
	}
	var overlay *graph.GraphOverlay
	if rep != nil {
		overlay = graph.OverlayFromPath(rep.Result.Path)
	}
	return graph.GenerateMermaid(m, overlay), nil
}

// Validate loads every machine and returns the problems keyed by name.
func (t *Tracer) Validate() (map[string]error, error) {
	names, err := t.Machines()
	if err != nil {
		return nil, err
	}
	problems := make(map[string]error)
	for _, name := range names {
		if _, err := t.Machine(name); err != nil {
			problems[name] = err
		}
	}
	return problems, nil
}

// Runs returns the run manager holding stored reports.
func (t *Tracer) Runs() *runs.Manager {
	return t.runs
}

// Loader returns the underlying MachineLoader.
func (t *Tracer) Loader() ports.MachineLoader {
	return t.loader
}
