package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/ntmtrace"
	"github.com/aretw0/ntmtrace/pkg/adapters/memory"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aStar = `name: a_star
description: a's only
states: [q0, qAccept, qReject]
input_alphabet: [a]
tape_alphabet: [a, _]
start: q0
accept: qAccept
reject: qReject
transitions:
  - q0,a,q0,a,R
  - q0,_,qAccept,_,S
`

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	loader := memory.NewLoader(map[string]string{
		"a_star": aStar,
		"broken": "name: broken\nstates: [q0]\nstart: q0\naccept: q9\n",
	})

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	tracer, err := ntmtrace.New("", ntmtrace.WithLoader(loader), ntmtrace.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)

	srv := NewServer(tracer, tracer.Runs(), WithMaxDepth(20), WithGatherer(reg))
	return srv, srv.Routes()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndInfo(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), strings.TrimSpace(ntmtrace.Version))
}

func TestListMachines(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "GET", "/machines/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []MachineSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, MachineSummary{Name: "a_star", Description: "a's only", Valid: true}, got[0])
	assert.Equal(t, "broken", got[1].Name)
	assert.False(t, got[1].Valid)
	assert.NotEmpty(t, got[1].Error)
}

func TestGetMachine(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "GET", "/machines/a_star", "")
	require.Equal(t, http.StatusOK, w.Code)
	var m domain.Machine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "q0", m.Start)
	assert.Len(t, m.Transitions, 2)

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/machines/nope", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, "GET", "/machines/broken", "").Code)
}

func TestCreateAndGetRun(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "POST", "/machines/a_star/runs", `{"input":"aa"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rep domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, domain.VerdictAccepted, rep.Result.Verdict)
	assert.Equal(t, 3, rep.Result.Depth)
	assert.Equal(t, 20, rep.MaxDepth)
	require.NotEmpty(t, rep.ID)

	w = do(t, h, "GET", "/runs/"+rep.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var stored domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, rep.ID, stored.ID)
	assert.Len(t, stored.Result.Path, 4)

	w = do(t, h, "GET", "/runs/", "")
	assert.JSONEq(t, `["`+rep.ID+`"]`, w.Body.String())

	w = do(t, h, "GET", "/machines/a_star/graph?run="+rep.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "class qAccept current;")

	assert.Equal(t, http.StatusNoContent, do(t, h, "DELETE", "/runs/"+rep.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/runs/"+rep.ID, "").Code)
}

func TestCreateRun_Text(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "POST", "/machines/a_star/runs?format=text", `{"input":"ab","max_depth":5}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Tracing NTM: a_star on input 'ab'\nString rejected in 1 steps.\n", w.Body.String())
}

func TestCreateRun_Errors(t *testing.T) {
	_, h := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/machines/a_star/runs", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/machines/a_star/runs", `{"input":"a","max_depth":-1}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "POST", "/machines/nope/runs", `{"input":"a"}`).Code)
}

func TestCreateRun_DepthLimit(t *testing.T) {
	srv, h := newTestServer(t)
	require.Equal(t, DefaultDepthLimit, srv.DepthLimit)

	w := do(t, h, "POST", "/machines/a_star/runs", `{"input":"a","max_depth":1001}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds the server limit of 1000")

	w = do(t, h, "POST", "/machines/a_star/runs", `{"input":"a","max_depth":1000}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUndecodableMachine(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"badmove": "name: badmove\nstates: [q0, qA]\ninput_alphabet: [a]\ntape_alphabet: [a, _]\nstart: q0\naccept: qA\ntransitions:\n  - q0,a,qA,a,X\n",
	})
	tracer, err := ntmtrace.New("", ntmtrace.WithLoader(loader))
	require.NoError(t, err)
	h := NewHandler(tracer, tracer.Runs())

	w := do(t, h, "GET", "/machines/badmove", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "unknown move")

	w = do(t, h, "POST", "/machines/badmove/runs", `{"input":"a"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	require.Equal(t, http.StatusCreated, do(t, h, "POST", "/machines/a_star/runs", `{"input":"a"}`).Code)

	w := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ntmtrace_runs_total{machine="a_star",verdict="accepted"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, "OPTIONS", "/machines/a_star/runs", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	_, h := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/events?machine=a_star", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(wSub, reqSub)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	require.Equal(t, http.StatusCreated, do(t, h, "POST", "/machines/a_star/runs", `{"input":"aa"}`).Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, "event: run")
	assert.Contains(t, output, `"verdict":"accepted"`)
}

func TestStreamManager_Topics(t *testing.T) {
	sm := NewStreamManager()

	one, cancelOne := sm.Subscribe("a_star")
	defer cancelOne()
	all, cancelAll := sm.Subscribe(allMachines)
	defer cancelAll()
	other, cancelOther := sm.Subscribe("loop")
	defer cancelOther()

	sm.Broadcast("a_star", "hello")

	assert.Equal(t, "hello", <-one)
	assert.Equal(t, "hello", <-all)
	select {
	case msg := <-other:
		t.Fatalf("unexpected message %q", msg)
	default:
	}
}
