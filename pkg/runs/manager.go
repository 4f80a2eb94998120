package runs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/ntmtrace/internal/logging"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/ports"
	"github.com/google/uuid"
)

// Request identifies one trace.
type Request struct {
	Machine     string
	Input       string
	MaxDepth    int
	Blank       domain.Symbol
	AcceptState string
}

// Key is the deduplication key of the request. Machine and input are
// quoted so separators inside them cannot make two requests collide.
func (r Request) Key() string {
	return fmt.Sprintf("%q:%d:%q", r.Machine, r.MaxDepth, r.Input)
}

// TraceFunc performs the actual simulation for a request.
type TraceFunc func(ctx context.Context) (*domain.Result, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates run execution and persistence.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.ReportStore

	mu    sync.Mutex
	locks map[string]*lockEntry
	index map[string]string // request key -> report id

	locker  ports.DistributedLocker
	lockTTL time.Duration
	cache   bool
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL bounds how long a distributed lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithCache toggles reuse of reports for repeated requests (default on).
func WithCache(enabled bool) Option {
	return func(m *Manager) {
		m.cache = enabled
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a run manager over the given report store.
func NewManager(store ports.ReportStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		index:   make(map[string]string),
		lockTTL: 30 * time.Second,
		cache:   true,
		logger:  logging.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Execute returns the stored report for req if one exists, otherwise runs
// trace, stores the report and returns it. The second return value reports
// whether the report came from the cache.
func (m *Manager) Execute(ctx context.Context, req Request, trace TraceFunc) (*domain.Report, bool, error) {
	var (
		report *domain.Report
		cached bool
	)
	err := m.WithLock(ctx, req.Key(), func(ctx context.Context) error {
		if m.cache {
			if r, ok := m.lookup(ctx, req.Key()); ok {
				report, cached = r, true
				return nil
			}
		}

		started := m.now()
		res, err := trace(ctx)
		if err != nil {
			return err
		}

		report = &domain.Report{
			ID:          m.newID(),
			Machine:     req.Machine,
			Input:       req.Input,
			MaxDepth:    req.MaxDepth,
			Result:      *res,
			StartedAt:   started,
			Duration:    m.now().Sub(started),
			Blank:       req.Blank,
			AcceptState: req.AcceptState,
		}
		if err := m.store.Save(ctx, report.ID, report); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}

		m.mu.Lock()
		m.index[req.Key()] = report.ID
		m.mu.Unlock()

		m.logger.Debug("run stored", "run_id", report.ID, "machine", req.Machine, "verdict", res.Verdict)
		return nil
	})
	return report, cached, err
}

// lookup resolves a cached report; a report that vanished from the store
// (expired or deleted) drops its index entry.
func (m *Manager) lookup(ctx context.Context, key string) (*domain.Report, bool) {
	m.mu.Lock()
	id, ok := m.index[key]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}

	r, err := m.store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrReportNotFound) {
			m.logger.Warn("failed to load cached report", "run_id", id, "err", err)
		}
		m.mu.Lock()
		delete(m.index, key)
		m.mu.Unlock()
		return nil, false
	}
	return r, true
}

// Get loads a report by id.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Report, error) {
	return m.store.Load(ctx, id)
}

// Delete removes a report and forgets any request pointing at it.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	for k, v := range m.index {
		if v == id {
			delete(m.index, k)
		}
	}
	m.mu.Unlock()
	return m.store.Delete(ctx, id)
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying report store.
func (m *Manager) Store() ports.ReportStore {
	return m.store
}

// WithLock executes fn while holding the local (and distributed, if
// configured) lock for key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
