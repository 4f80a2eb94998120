package ports

import (
	"context"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

// ReportStore defines the interface for persisting completed run reports.
// Reports are immutable once saved; saving again under the same key overwrites.
type ReportStore interface {
	// Save persists the report under the given key.
	Save(ctx context.Context, key string, report *domain.Report) error

	// Load retrieves the report for a given key.
	// Returns domain.ErrReportNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*domain.Report, error)

	// Delete removes the report for a given key.
	Delete(ctx context.Context, key string) error

	// List returns the keys of stored reports.
	List(ctx context.Context) ([]string, error)
}
