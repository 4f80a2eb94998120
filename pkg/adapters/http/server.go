package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/ntmtrace"
	"github.com/aretw0/ntmtrace/internal/logging"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/report"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds run request bodies.
const maxBodyBytes = 1 << 20

// Tracer defines what the server needs from the tracing core.
type Tracer interface {
	Machines() ([]string, error)
	Machine(name string) (*domain.Machine, error)
	Trace(ctx context.Context, machine, input string, maxDepth int) (*domain.Report, error)
	Graph(name string, rep *domain.Report) (string, error)
}

// Runs gives access to stored reports.
type Runs interface {
	Get(ctx context.Context, id string) (*domain.Report, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// Server serves machines and runs over JSON.
type Server struct {
	Tracer   Tracer
	Runs     Runs
	Streams  *StreamManager
	MaxDepth int
	// DepthLimit is the largest max_depth a client may request; 0 disables it.
	DepthLimit int

	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxDepth sets the step budget used when a run request omits one.
func WithMaxDepth(depth int) Option {
	return func(s *Server) {
		s.MaxDepth = depth
	}
}

// WithDepthLimit caps the max_depth a run request may ask for. Level width
// can grow exponentially with depth, so requests above it are refused.
func WithDepthLimit(limit int) Option {
	return func(s *Server) {
		s.DepthLimit = limit
	}
}

// WithGatherer exposes the metrics of gatherer on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// RunRequest is the body of POST /machines/{name}/runs.
type RunRequest struct {
	Input    string `json:"input"`
	MaxDepth *int   `json:"max_depth,omitempty"`
}

// MachineSummary is one entry of GET /machines.
type MachineSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Valid       bool   `json:"valid"`
	Error       string `json:"error,omitempty"`
}

// DefaultDepthLimit is the request depth cap used when none is configured.
const DefaultDepthLimit = 1000

// NewServer builds a Server with defaults.
func NewServer(tracer Tracer, runs Runs, opts ...Option) *Server {
	s := &Server{
		Tracer:   tracer,
		Runs:     runs,
		Streams:  NewStreamManager(),
		MaxDepth:   100,
		DepthLimit: DefaultDepthLimit,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates the HTTP handler for the tracer.
func NewHandler(tracer Tracer, runs Runs, opts ...Option) http.Handler {
	return NewServer(tracer, runs, opts...).Routes()
}

// Routes mounts every endpoint on a chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Route("/machines", func(r chi.Router) {
		r.Get("/", s.ListMachines)
		r.Get("/{name}", s.GetMachine)
		r.Get("/{name}/graph", s.GetGraph)
		r.Post("/{name}/runs", s.CreateRun)
	})

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.ListRuns)
		r.Get("/{id}", s.GetRun)
		r.Delete("/{id}", s.DeleteRun)
	})

	r.Get("/events", s.SubscribeEvents)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "ntmtrace-http",
		"version": strings.TrimSpace(ntmtrace.Version),
	})
}

// ListMachines handles the GET /machines request.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	names, err := s.Tracer.Machines()
	if err != nil {
		s.writeError(w, "ListMachines", err)
		return
	}

	out := make([]MachineSummary, 0, len(names))
	for _, name := range names {
		sum := MachineSummary{Name: name, Valid: true}
		m, err := s.Tracer.Machine(name)
		if err != nil {
			sum.Valid = false
			sum.Error = err.Error()
		} else {
			sum.Description = m.Description
		}
		out = append(out, sum)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetMachine handles the GET /machines/{name} request.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	m, err := s.Tracer.Machine(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, "GetMachine", err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

// GetGraph handles the GET /machines/{name}/graph request. The optional
// run query parameter highlights the accepting path of a stored run.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	var rep *domain.Report
	if id := r.URL.Query().Get("run"); id != "" {
		var err error
		if rep, err = s.Runs.Get(r.Context(), id); err != nil {
			s.writeError(w, "GetGraph", err)
			return
		}
	}

	out, err := s.Tracer.Graph(chi.URLParam(r, "name"), rep)
	if err != nil {
		s.writeError(w, "GetGraph", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, out)
}

// CreateRun handles the POST /machines/{name}/runs request. With
// ?format=text the response is the human-readable trace instead of JSON.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateRun: invalid request body", "err", err)
		return
	}

	depth := s.MaxDepth
	if body.MaxDepth != nil {
		depth = *body.MaxDepth
	}
	if s.DepthLimit > 0 && depth > s.DepthLimit {
		s.writeError(w, "CreateRun", fmt.Errorf("%w: %d exceeds the server limit of %d", domain.ErrInvalidDepth, depth, s.DepthLimit))
		return
	}

	rep, err := s.Tracer.Trace(r.Context(), name, body.Input, depth)
	if err != nil {
		s.writeError(w, "CreateRun", err)
		return
	}

	if payload, err := json.Marshal(runEvent(rep)); err == nil {
		s.Streams.Broadcast(name, string(payload))
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		records := report.Records(rep.Machine, rep.Input, &rep.Result)
		if err := report.Emit(r.Context(), report.NewTextSink(w), records); err != nil {
			s.logger.Error("CreateRun: text response failed", "err", err)
		}
		return
	}
	s.writeJSON(w, http.StatusCreated, rep)
}

// ListRuns handles the GET /runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Runs.List(r.Context())
	if err != nil {
		s.writeError(w, "ListRuns", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetRun handles the GET /runs/{id} request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Runs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetRun", err)
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

// DeleteRun handles the DELETE /runs/{id} request.
func (s *Server) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.Runs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "DeleteRun", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunEvent is the payload streamed on GET /events for every new run.
type RunEvent struct {
	ID      string         `json:"id"`
	Machine string         `json:"machine"`
	Input   string         `json:"input"`
	Verdict domain.Verdict `json:"verdict"`
	Depth   int            `json:"depth"`
}

func runEvent(rep *domain.Report) RunEvent {
	return RunEvent{
		ID:      rep.ID,
		Machine: rep.Machine,
		Input:   rep.Input,
		Verdict: rep.Result.Verdict,
		Depth:   rep.Result.Depth,
	}
}

// SubscribeEvents handles the GET /events request (SSE). The optional
// machine query parameter narrows the stream to one machine.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	topic := r.URL.Query().Get("machine")
	if topic == "" {
		topic = allMachines
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()

	s.logger.Info("SSE: subscribed", "machine", topic)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "machine", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: run\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// allMachines is the topic receiving the events of every machine.
const allMachines = "*"

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // topic -> set of channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Broadcast delivers msg to the subscribers of machine and to those of
// every machine.
func (sm *StreamManager) Broadcast(machine string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, topic := range []string{machine, allMachines} {
		for ch := range sm.subscribers[topic] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: client buffer full, dropping message", "machine", machine)
			}
		}
	}
}

// -- Helpers --

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMachineNotFound), errors.Is(err, domain.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidMachine):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidDepth), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
