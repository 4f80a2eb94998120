package runs_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/ntmtrace/pkg/adapters/memory"
	"github.com/aretw0/ntmtrace/pkg/adapters/redis"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/runs"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var req = runs.Request{Machine: "a_star", Input: "aa", MaxDepth: 10, Blank: "_", AcceptState: "qAccept"}

func countingTrace(calls *atomic.Int32) runs.TraceFunc {
	return func(ctx context.Context) (*domain.Result, error) {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond) // widen the race window
		return &domain.Result{Verdict: domain.VerdictAccepted, Depth: 3, MaxDepth: 10}, nil
	}
}

func TestManager_ExecuteStoresReport(t *testing.T) {
	store := memory.NewStore()
	m := runs.NewManager(store)
	ctx := context.Background()

	var calls atomic.Int32
	rep, cached, err := m.Execute(ctx, req, countingTrace(&calls))
	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, "a_star", rep.Machine)
	assert.Equal(t, domain.VerdictAccepted, rep.Result.Verdict)
	assert.Equal(t, "qAccept", rep.AcceptState)

	loaded, err := m.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, loaded.ID)
}

func TestManager_RepeatedRequestIsCached(t *testing.T) {
	m := runs.NewManager(memory.NewStore())
	ctx := context.Background()

	var calls atomic.Int32
	first, _, err := m.Execute(ctx, req, countingTrace(&calls))
	require.NoError(t, err)
	second, cached, err := m.Execute(ctx, req, countingTrace(&calls))
	require.NoError(t, err)

	assert.True(t, cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(1), calls.Load())

	other := req
	other.MaxDepth = 3
	_, cached, err = m.Execute(ctx, other, countingTrace(&calls))
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, int32(2), calls.Load())
}

func TestManager_CacheDisabled(t *testing.T) {
	m := runs.NewManager(memory.NewStore(), runs.WithCache(false))
	ctx := context.Background()

	var calls atomic.Int32
	a, _, err := m.Execute(ctx, req, countingTrace(&calls))
	require.NoError(t, err)
	b, _, err := m.Execute(ctx, req, countingTrace(&calls))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestManager_DeletedReportIsRetraced(t *testing.T) {
	m := runs.NewManager(memory.NewStore())
	ctx := context.Background()

	var calls atomic.Int32
	rep, _, err := m.Execute(ctx, req, countingTrace(&calls))
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, rep.ID))

	_, err = m.Get(ctx, rep.ID)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	_, cached, err := m.Execute(ctx, req, countingTrace(&calls))
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, int32(2), calls.Load())
}

func TestManager_TraceErrorIsNotStored(t *testing.T) {
	store := memory.NewStore()
	m := runs.NewManager(store)
	boom := errors.New("boom")

	_, _, err := m.Execute(context.Background(), req, func(context.Context) (*domain.Result, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	ids, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestManager_ConcurrentIdenticalRequestsTraceOnce(t *testing.T) {
	m := runs.NewManager(memory.NewStore())
	ctx := context.Background()

	var (
		calls atomic.Int32
		wg    sync.WaitGroup
	)
	ids := make([]string, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rep, _, err := m.Execute(ctx, req, countingTrace(&calls))
			assert.NoError(t, err)
			ids[i] = rep.ID
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestManager_DistributedLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client)
	m := runs.NewManager(store, runs.WithLocker(redis.NewLocker(client, "test:")))

	var calls atomic.Int32
	rep, _, err := m.Execute(context.Background(), req, countingTrace(&calls))
	require.NoError(t, err)

	assert.True(t, mr.Exists(redis.DefaultPrefix+rep.ID))
	assert.False(t, mr.Exists("test:lock:"+req.Key()), "lock released after the run")
}

func TestManager_KeySeparatesAmbiguousRequests(t *testing.T) {
	m := runs.NewManager(memory.NewStore())
	ctx := context.Background()

	first := runs.Request{Machine: "m:1", Input: "x", MaxDepth: 5}
	second := runs.Request{Machine: "m", Input: "5:x", MaxDepth: 1}
	require.NotEqual(t, first.Key(), second.Key())

	_, _, err := m.Execute(ctx, first, func(ctx context.Context) (*domain.Result, error) {
		return &domain.Result{Verdict: domain.VerdictAccepted, Depth: 2, MaxDepth: 5}, nil
	})
	require.NoError(t, err)

	rep, cached, err := m.Execute(ctx, second, func(ctx context.Context) (*domain.Result, error) {
		return &domain.Result{Verdict: domain.VerdictRejected, Depth: 1, MaxDepth: 1}, nil
	})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "m", rep.Machine)
	assert.Equal(t, domain.VerdictRejected, rep.Result.Verdict)
}
