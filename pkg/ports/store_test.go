package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/ports"
)

// MockStore is a map-backed ReportStore used to exercise the contract suite itself.
type MockStore struct {
	data map[string]domain.Report
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]domain.Report)}
}

func (m *MockStore) Save(ctx context.Context, key string, report *domain.Report) error {
	m.data[key] = *report
	return nil
}

func (m *MockStore) Load(ctx context.Context, key string) (*domain.Report, error) {
	report, ok := m.data[key]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return &report, nil
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func TestReportStore_Contract(t *testing.T) {
	ports.RunReportStoreContract(t, NewMockStore())
}
