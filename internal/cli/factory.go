package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/ntmtrace"
	"github.com/aretw0/ntmtrace/internal/config"
	"github.com/aretw0/ntmtrace/internal/logging"
	"github.com/aretw0/ntmtrace/pkg/adapters/file"
	"github.com/aretw0/ntmtrace/pkg/adapters/memory"
	"github.com/aretw0/ntmtrace/pkg/adapters/redis"
	"github.com/aretw0/ntmtrace/pkg/observability"
	"github.com/aretw0/ntmtrace/pkg/ports"
	"github.com/aretw0/ntmtrace/pkg/runs"
	"github.com/prometheus/client_golang/prometheus"
)

// Options are the global flags shared by every command.
type Options struct {
	Dir      string
	LogLevel string
	LogJSON  bool
	LogFile  string
	Loam     bool
	Strict   bool

	// Store and RedisAddr override the config file when set.
	Store     string
	RedisAddr string
}

// App bundles what a command needs: the resolved config, the logger,
// a tracer wired to the configured report store, and the metrics registry.
type App struct {
	Dir      string
	Config   *config.Config
	Logger   *slog.Logger
	Tracer   *ntmtrace.Tracer
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	closers []io.Closer
}

// NewApp loads the project config and wires the tracer with standard CLI
// conventions.
func NewApp(opts Options) (*App, error) {
	cfg, err := config.Load(opts.Dir)
	if err != nil {
		return nil, err
	}
	if opts.Store != "" {
		cfg.Store = opts.Store
	}
	if opts.RedisAddr != "" {
		cfg.Store = config.StoreRedis
		cfg.Redis.Addr = opts.RedisAddr
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogJSON {
		cfg.Log.JSON = true
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &App{Dir: opts.Dir, Config: cfg}

	logger, err := app.createLogger()
	if err != nil {
		return nil, err
	}
	app.Logger = logger

	store, locker, err := app.createStore()
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Registry = prometheus.NewRegistry()
	app.Metrics = observability.NewMetrics(app.Registry)

	runOpts := []runs.Option{runs.WithLogger(logger)}
	if locker != nil {
		runOpts = append(runOpts, runs.WithLocker(locker))
	}

	tracerOpts := []ntmtrace.Option{
		ntmtrace.WithLogger(logger),
		ntmtrace.WithLifecycleHooks(observability.Combine(
			observability.LoggingHooks(logger),
			app.Metrics.Hooks(),
		)),
		ntmtrace.WithRunManager(runs.NewManager(store, runOpts...)),
		ntmtrace.WithStrictInput(opts.Strict),
	}
	if opts.Loam {
		tracerOpts = append(tracerOpts, ntmtrace.WithLoam())
	}

	tracer, err := ntmtrace.New(opts.Dir, tracerOpts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error initializing tracer: %w", err)
	}
	app.Tracer = tracer

	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}
	return app, nil
}

func (a *App) createLogger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(a.Config.Log.Level)
	if err != nil {
		return nil, err
	}

	opts := logging.Options{Level: level, JSON: a.Config.Log.JSON}
	if a.Config.Log.File != "" {
		f, err := os.OpenFile(a.Config.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		opts.File = f
	}
	return logging.NewWithOptions(opts), nil
}

func (a *App) createStore() (ports.ReportStore, ports.DistributedLocker, error) {
	cfg := a.Config
	switch cfg.Store {
	case config.StoreFile:
		dir := cfg.StoreDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(a.Dir, dir)
		}
		return file.NewStore(dir), nil, nil
	case config.StoreRedis:
		ttl, err := cfg.RedisTTL()
		if err != nil {
			return nil, nil, err
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithTTL(ttl),
			redis.WithPrefix(cfg.Redis.Prefix),
		)
		a.closers = append(a.closers, store)
		a.Logger.Info("using redis report store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		return store, redis.NewLocker(store.Client(), cfg.Redis.Prefix), nil
	default:
		return memory.NewStore(), nil, nil
	}
}

// Close releases the log file and store connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
