package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Report
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Report),
	}
}

// Save persists the report in memory.
func (s *Store) Save(ctx context.Context, key string, report *domain.Report) error {
	copied := cloneReport(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Load retrieves the report from memory.
func (s *Store) Load(ctx context.Context, key string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[key]
	if !ok {
		return nil, domain.ErrReportNotFound
	}

	// Copy on read so callers can't mutate the stored path through shared slices
	return cloneReport(report), nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns stored report keys, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for id := range s.data {
		keys = append(keys, id)
	}
	slices.Sort(keys)
	return keys, nil
}

func cloneReport(r *domain.Report) *domain.Report {
	out := *r
	out.Result.Levels = slices.Clone(r.Result.Levels)
	if r.Result.Path != nil {
		out.Result.Path = make([]domain.Configuration, len(r.Result.Path))
		for i, c := range r.Result.Path {
			c.Left = slices.Clone(c.Left)
			c.Right = slices.Clone(c.Right)
			out.Result.Path[i] = c
		}
	}
	return &out
}
