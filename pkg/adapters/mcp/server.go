package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/ntmtrace"
	"github.com/aretw0/ntmtrace/internal/logging"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/report"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MachinesURI is the resource listing every machine definition.
const MachinesURI = "ntm://machines"

// SimulateResponse is the structured result of the simulate tool.
type SimulateResponse struct {
	RunID    string         `json:"run_id" jsonschema_description:"Identifier of the stored run"`
	Verdict  domain.Verdict `json:"verdict" jsonschema_description:"accepted, rejected or undecided"`
	Depth    int            `json:"depth" jsonschema_description:"Level at which the trace stopped"`
	MaxDepth int            `json:"max_depth" jsonschema_description:"Step budget of the trace"`
	Trace    string         `json:"trace" jsonschema_description:"Human-readable trace, including the accepting path"`
}

// Tracer defines what the MCP server needs from the tracing core.
type Tracer interface {
	Machines() ([]string, error)
	Machine(name string) (*domain.Machine, error)
	Trace(ctx context.Context, machine, input string, maxDepth int) (*domain.Report, error)
	Graph(name string, rep *domain.Report) (string, error)
}

// Server wraps the tracer and exposes it as an MCP Server.
type Server struct {
	tracer     Tracer
	maxDepth   int
	depthLimit int
	logger     *slog.Logger
	mcpServer  *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxDepth sets the step budget used when simulate omits one.
func WithMaxDepth(depth int) Option {
	return func(s *Server) {
		s.maxDepth = depth
	}
}

// WithDepthLimit caps the max_depth a simulate call may ask for; 0 disables it.
func WithDepthLimit(limit int) Option {
	return func(s *Server) {
		s.depthLimit = limit
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(tracer Tracer, opts ...Option) *Server {
	s := &Server{
		tracer:     tracer,
		maxDepth:   100,
		depthLimit: 1000,
		logger:     logging.NewNop(),
		mcpServer:  server.NewMCPServer("ntmtrace-mcp", strings.TrimSpace(ntmtrace.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: simulate
	simulateTool := mcp.NewTool("simulate",
		mcp.WithDescription("Trace a nondeterministic Turing machine on an input word, breadth first, and report whether it is accepted."),
		mcp.WithString("machine", mcp.Required(), mcp.Description("Name of the machine definition")),
		mcp.WithString("input", mcp.Description("Input word; each character is one tape symbol (empty for the empty word)")),
		mcp.WithNumber("max_depth", mcp.Description("Maximum number of levels to expand (optional)")),
		mcp.WithOutputSchema[SimulateResponse](),
	)
	s.mcpServer.AddTool(simulateTool, mcp.NewStructuredToolHandler(s.handleSimulate))

	// TOOL: list_machines
	s.mcpServer.AddTool(mcp.NewTool("list_machines",
		mcp.WithDescription("List the names of the available machines."),
	), s.handleListMachines)

	// TOOL: get_machine
	s.mcpServer.AddTool(mcp.NewTool("get_machine",
		mcp.WithDescription("Get the parsed definition of a machine: states, alphabets and rules."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the machine definition")),
	), s.handleGetMachine)

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get a Mermaid diagram of the machine's state graph."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the machine definition")),
	), s.handleGetGraph)
}

// Handler methods for tools

func (s *Server) handleSimulate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SimulateResponse, error) {
	machine, _ := args["machine"].(string)
	input, _ := args["input"].(string)

	depth := s.maxDepth
	if v, ok := args["max_depth"].(float64); ok {
		depth = int(v)
	}
	if s.depthLimit > 0 && depth > s.depthLimit {
		return SimulateResponse{}, fmt.Errorf("%w: %d exceeds the server limit of %d", domain.ErrInvalidDepth, depth, s.depthLimit)
	}

	rep, err := s.tracer.Trace(ctx, machine, input, depth)
	if err != nil {
		s.logger.Warn("MCP simulate failed", "machine", machine, "err", err)
		return SimulateResponse{}, fmt.Errorf("simulate failed: %w", err)
	}

	var sb strings.Builder
	if err := report.Emit(ctx, report.NewTextSink(&sb), report.Records(rep.Machine, rep.Input, &rep.Result)); err != nil {
		return SimulateResponse{}, fmt.Errorf("render trace: %w", err)
	}

	return SimulateResponse{
		RunID:    rep.ID,
		Verdict:  rep.Result.Verdict,
		Depth:    rep.Result.Depth,
		MaxDepth: rep.Result.MaxDepth,
		Trace:    sb.String(),
	}, nil
}

func (s *Server) handleListMachines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.tracer.Machines()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}
	jsonBytes, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetMachine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	m, err := s.tracer.Machine(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get_machine failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(m)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.tracer.Graph(request.GetString("name", ""), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get_graph failed: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) registerResources() {
	// EXPOSE: ntm://machines
	s.mcpServer.AddResource(mcp.NewResource(MachinesURI, "Machine Definitions",
		mcp.WithMIMEType("application/json"),
	), s.readMachines)
}

// readMachines returns every valid machine definition, keyed by name.
// Invalid definitions are listed with their error.
func (s *Server) readMachines(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.tracer.Machines()
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}

	type entry struct {
		Machine *domain.Machine `json:"machine,omitempty"`
		Error   string          `json:"error,omitempty"`
	}
	out := make(map[string]entry, len(names))
	for _, name := range names {
		m, err := s.tracer.Machine(name)
		if err != nil {
			out[name] = entry{Error: err.Error()}
			continue
		}
		out[name] = entry{Machine: m}
	}
	jsonBytes, _ := json.Marshal(out)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      MachinesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
