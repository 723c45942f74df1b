package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/encoder"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RunResponse is the structured result of run_machine.
type RunResponse struct {
	Machine string              `json:"machine" jsonschema_description:"Name of the executed machine"`
	Status  domain.RunStatus    `json:"status" jsonschema_description:"halted, rejected or suspended"`
	State   domain.State        `json:"state" jsonschema_description:"State the run stopped in"`
	Tape    string              `json:"tape" jsonschema_description:"Materialized tape contents"`
	Head    int                 `json:"head" jsonschema_description:"Head position on the tape"`
	Steps   int                 `json:"steps" jsonschema_description:"Number of executed steps"`
	Trace   []domain.TraceEntry `json:"trace,omitempty" jsonschema_description:"Every executed step, when requested"`
	Error   string              `json:"error,omitempty" jsonschema_description:"Why the run did not halt"`
}

// EncodeResponse is the structured result of encode_machine.
type EncodeResponse struct {
	Machine  string `json:"machine" jsonschema_description:"Name of the encoded machine"`
	Encoding string `json:"encoding" jsonschema_description:"Canonical string encoding"`
}

// ListResponse is the structured result of list_machines.
type ListResponse struct {
	Machines []string `json:"machines" jsonschema_description:"Available machine names"`
}

// Server exposes a machine loader as an MCP Server.
type Server struct {
	loader    ports.MachineLoader
	maxSteps  int
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithMaxSteps bounds runs that do not set max_steps. 0 means unlimited.
func WithMaxSteps(n int) Option {
	return func(s *Server) {
		s.maxSteps = n
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(loader ports.MachineLoader, opts ...Option) *Server {
	s := &Server{
		loader:    loader,
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("turing-mcp", strings.TrimSpace(turing.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on addr using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

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
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: run_machine
	s.mcpServer.AddTool(mcp.NewTool("run_machine",
		mcp.WithDescription("Run a Turing machine on a tape until it halts, rejects or exhausts its step budget."),
		mcp.WithString("name", mcp.Description("Name of a known machine (see list_machines)")),
		mcp.WithString("machine", mcp.Description("Inline machine document in YAML or JSON, used instead of name")),
		mcp.WithString("tape", mcp.Description("Initial tape, one character per cell (defaults to the machine sample tape)")),
		mcp.WithNumber("max_steps", mcp.Description("Step budget, capped by the server budget (0 = server default)")),
		mcp.WithBoolean("include_trace", mcp.Description("Return every executed step")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleRun))

	// TOOL: encode_machine
	s.mcpServer.AddTool(mcp.NewTool("encode_machine",
		mcp.WithDescription("Compute the canonical string encoding of a machine."),
		mcp.WithString("name", mcp.Description("Name of a known machine")),
		mcp.WithString("machine", mcp.Description("Inline machine document in YAML or JSON, used instead of name")),
		mcp.WithString("reject", mcp.Description("Comma-separated reject states (optional)")),
		mcp.WithOutputSchema[EncodeResponse](),
	), mcp.NewStructuredToolHandler(s.handleEncode))

	// TOOL: list_machines
	s.mcpServer.AddTool(mcp.NewTool("list_machines",
		mcp.WithDescription("List the machines known to the server."),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	// TOOL: machine_graph
	s.mcpServer.AddTool(mcp.NewTool("machine_graph",
		mcp.WithDescription("Render the transition table of a machine as a Mermaid flowchart."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of a known machine")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, _ := request.GetArguments()["name"].(string)
		m, err := s.loader.GetMachine(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("graph failed: %v", err)), nil
		}
		return mcp.NewToolResultText(graph.GenerateMermaid(m, nil)), nil
	})
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	m, err := s.resolve(ctx, args)
	if err != nil {
		return RunResponse{}, err
	}

	// max_steps may lower the server budget but never lift it.
	maxSteps := s.maxSteps
	if n, ok := args["max_steps"].(float64); ok && n > 0 && (maxSteps == 0 || int(n) < maxSteps) {
		maxSteps = int(n)
	}
	tape, _ := args["tape"].(string)
	if tape == "" {
		tape = m.SampleTape
	}

	eng, err := turing.New(m, domain.SplitTape(tape),
		turing.WithLogger(s.logger),
		turing.WithMaxSteps(maxSteps),
	)
	if err != nil {
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}
	runErr := eng.Run(ctx)
	if runErr != nil {
		s.logger.Debug("MCP run stopped", "machine", m.Name, "err", runErr)
	}

	resp := RunResponse{
		Machine: m.Name,
		Status:  eng.Status(),
		State:   eng.State(),
		Tape:    eng.TapeString(),
		Head:    eng.Head(),
		Steps:   eng.Steps(),
	}
	if withTrace, _ := args["include_trace"].(bool); withTrace {
		resp.Trace = eng.Trace()
	}
	if runErr != nil {
		resp.Error = runErr.Error()
	}
	return resp, nil
}

func (s *Server) handleEncode(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EncodeResponse, error) {
	m, err := s.resolve(ctx, args)
	if err != nil {
		return EncodeResponse{}, err
	}
	var reject []domain.State
	if list, ok := args["reject"].(string); ok {
		for _, st := range strings.Split(list, ",") {
			if st = strings.TrimSpace(st); st != "" {
				reject = append(reject, domain.State(st))
			}
		}
	}
	code, err := encoder.EncodeMachine(m, reject...)
	if err != nil {
		return EncodeResponse{}, fmt.Errorf("encode failed: %w", err)
	}
	return EncodeResponse{Machine: m.Name, Encoding: code}, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ListResponse, error) {
	names, err := s.loader.ListMachines(ctx)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return ListResponse{Machines: names}, nil
}

// resolve parses the inline machine document if present, or loads the named one.
func (s *Server) resolve(ctx context.Context, args map[string]interface{}) (*domain.Machine, error) {
	if doc, ok := args["machine"].(string); ok && strings.TrimSpace(doc) != "" {
		m, err := compiler.NewParser().Parse([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("invalid machine: %w", err)
		}
		if m.Name == "" {
			m.Name = "inline"
		}
		return m, nil
	}
	name, _ := args["name"].(string)
	if name == "" {
		return nil, errors.New("either name or machine is required")
	}
	return s.loader.GetMachine(ctx, name)
}

func (s *Server) registerResources() {
	// EXPOSE: turing://machines
	s.mcpServer.AddResource(mcp.NewResource("turing://machines", "Available Machines",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.loader.ListMachines(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list machines: %w", err)
		}
		machines := make([]*domain.Machine, 0, len(names))
		for _, name := range names {
			m, err := s.loader.GetMachine(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to load machine %s: %w", name, err)
			}
			machines = append(machines, m)
		}
		jsonBytes, _ := json.Marshal(machines)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "turing://machines",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
