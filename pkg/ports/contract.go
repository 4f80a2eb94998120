package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractReport(key string) *domain.Report {
	return &domain.Report{
		ID:       key,
		Machine:  "a-star",
		Input:    "aa",
		MaxDepth: 5,
		Blank:    domain.DefaultBlank,
		Result: domain.Result{
			Verdict:  domain.VerdictAccepted,
			Depth:    3,
			MaxDepth: 5,
			Path: []domain.Configuration{
				{ID: 0, State: "q0", Right: domain.TapeFromString("aa")},
				{ID: 1, Left: domain.TapeFromString("a"), State: "q0", Right: domain.TapeFromString("a")},
			},
		},
	}
}

// RunReportStoreContract runs a suite of tests to verify that a ReportStore implementation
// adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	key := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		report := contractReport(key)

		err := store.Save(ctx, key, report)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.Machine, loaded.Machine)
		assert.Equal(t, report.Input, loaded.Input)
		assert.Equal(t, domain.VerdictAccepted, loaded.Result.Verdict)
		require.Len(t, loaded.Result.Path, 2)
		assert.Equal(t, "a", loaded.Result.Path[1].Left.String())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, contractReport(key))
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, contractReport(id1))
		_ = store.Save(ctx, id2, contractReport(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}
