package http

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/encoder"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var rawSpec []byte

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return doc, nil
}

// Server exposes machines from a loader over HTTP.
type Server struct {
	Loader   ports.MachineLoader
	Sessions *session.Manager
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	// MaxSteps bounds runs whose request does not set max_steps. 0 means unlimited.
	MaxSteps int
	Logger   *slog.Logger

	spec *openapi3.T
}

// Option configures a Server.
type Option func(*Server)

// WithSessions enables persisted runs (run_id, /runs).
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithMetrics records runs on m and serves g on /metrics.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Metrics = m
		s.Gatherer = g
	}
}

// WithMaxSteps sets the default step budget.
func WithMaxSteps(n int) Option {
	return func(s *Server) {
		s.MaxSteps = n
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewServer creates a server over loader.
// Request bodies are validated against the embedded OpenAPI document.
func NewServer(loader ports.MachineLoader, opts ...Option) (*Server, error) {
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		Loader: loader,
		Logger: slog.Default(),
		spec:   spec,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewHandler creates a new HTTP handler serving the machines of loader.
func NewHandler(loader ports.MachineLoader, opts ...Option) (http.Handler, error) {
	s, err := NewServer(loader, opts...)
	if err != nil {
		return nil, err
	}
	return s.Handler(), nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Get("/machines", s.ListMachines)
	r.Get("/machines/{name}", s.GetMachine)
	r.Get("/machines/{name}/graph", s.GetMachineGraph)
	r.Post("/run", s.Run)
	r.Post("/encode", s.Encode)

	r.Get("/runs", s.ListRuns)
	r.Get("/runs/{id}", s.GetRun)
	r.Post("/runs/{id}/resume", s.ResumeRun)

	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Turing API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// MachineRef names a known machine or carries an inline description.
type MachineRef struct {
	Name    string         `json:"name,omitempty"`
	Machine map[string]any `json:"machine,omitempty"`
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	MachineRef
	Tape     string `json:"tape,omitempty"`
	MaxSteps int    `json:"max_steps,omitempty"`
	RunID    string `json:"run_id,omitempty"`
}

// EncodeRequest is the body of POST /encode.
type EncodeRequest struct {
	MachineRef
	Reject []string `json:"reject,omitempty"`
}

// EncodeResponse is the body returned by POST /encode.
type EncodeResponse struct {
	Machine  string `json:"machine"`
	Encoding string `json:"encoding"`
}

// RunResponse describes a run after it stopped.
type RunResponse struct {
	RunID   string              `json:"run_id,omitempty"`
	Machine string              `json:"machine"`
	Status  domain.RunStatus    `json:"status"`
	State   domain.State        `json:"state"`
	Tape    string              `json:"tape"`
	Head    int                 `json:"head"`
	Steps   int                 `json:"steps"`
	Trace   []domain.TraceEntry `json:"trace"`
	Error   string              `json:"error,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "turing-http",
		"version":     strings.TrimSpace(turing.Version),
		"api_version": apiVersion,
	})
}

// ListMachines handles the GET /machines request.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	names, err := s.Loader.ListMachines(r.Context())
	if err != nil {
		s.fail(w, "ListMachines", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"machines": names})
}

// GetMachine handles the GET /machines/{name} request.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	m, err := s.Loader.GetMachine(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "GetMachine", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// GetMachineGraph handles the GET /machines/{name}/graph request.
func (s *Server) GetMachineGraph(w http.ResponseWriter, r *http.Request) {
	m, err := s.Loader.GetMachine(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "GetMachineGraph", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(m, nil))
}

// Run handles the POST /run request.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := s.decodeBody(r, "/run", &body); err != nil {
		s.badRequest(w, "Run", err)
		return
	}
	if body.MaxSteps < 0 {
		s.badRequest(w, "Run", errors.New("max_steps cannot be negative"))
		return
	}
	if body.RunID != "" && s.Sessions == nil {
		s.unsupported(w)
		return
	}

	m, err := s.resolve(r.Context(), body.MachineRef)
	if err != nil {
		s.fail(w, "Run", err)
		return
	}
	tapeSrc := body.Tape
	if tapeSrc == "" {
		tapeSrc = m.SampleTape
	}
	tape := domain.SplitTape(tapeSrc)
	opts := s.engineOptions(body.MaxSteps)

	var eng *turing.Engine
	var runErr error
	if body.RunID != "" {
		eng, runErr = s.Sessions.Start(r.Context(), body.RunID, m, tape, opts...)
	} else {
		eng, err = turing.New(m, tape, opts...)
		if err == nil {
			runErr = eng.Run(r.Context())
		}
	}
	if eng == nil {
		s.fail(w, "Run", errors.Join(err, runErr))
		return
	}

	resp := fromSnapshot(eng.Snapshot())
	if runErr != nil {
		resp.Error = runErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Encode handles the POST /encode request.
func (s *Server) Encode(w http.ResponseWriter, r *http.Request) {
	var body EncodeRequest
	if err := s.decodeBody(r, "/encode", &body); err != nil {
		s.badRequest(w, "Encode", err)
		return
	}
	m, err := s.resolve(r.Context(), body.MachineRef)
	if err != nil {
		s.fail(w, "Encode", err)
		return
	}
	reject := make([]domain.State, len(body.Reject))
	for i, st := range body.Reject {
		reject[i] = domain.State(st)
	}
	code, err := encoder.EncodeMachine(m, reject...)
	if err != nil {
		s.fail(w, "Encode", err)
		return
	}
	writeJSON(w, http.StatusOK, EncodeResponse{Machine: m.Name, Encoding: code})
}

// ListRuns handles the GET /runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	if s.Sessions == nil {
		s.unsupported(w)
		return
	}
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListRuns", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"runs": ids})
}

// GetRun handles the GET /runs/{id} request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	if s.Sessions == nil {
		s.unsupported(w)
		return
	}
	snap, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetRun", err)
		return
	}
	writeJSON(w, http.StatusOK, fromSnapshot(snap))
}

// ResumeRun handles the POST /runs/{id}/resume request.
func (s *Server) ResumeRun(w http.ResponseWriter, r *http.Request) {
	if s.Sessions == nil {
		s.unsupported(w)
		return
	}
	var body struct {
		MaxSteps int `json:"max_steps"`
	}
	if r.ContentLength != 0 {
		if err := s.decodeBody(r, "/runs/{id}/resume", &body); err != nil {
			s.badRequest(w, "ResumeRun", err)
			return
		}
	}

	eng, runErr := s.Sessions.Resume(r.Context(), chi.URLParam(r, "id"), s.engineOptions(body.MaxSteps)...)
	if eng == nil {
		s.fail(w, "ResumeRun", runErr)
		return
	}
	resp := fromSnapshot(eng.Snapshot())
	if runErr != nil {
		resp.Error = runErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// resolve returns the inline machine if present, the named one otherwise.
func (s *Server) resolve(ctx context.Context, ref MachineRef) (*domain.Machine, error) {
	if ref.Machine != nil {
		doc, err := compiler.Decode(ref.Machine)
		if err != nil {
			return nil, err
		}
		if doc.Name == "" {
			doc.Name = firstNonEmpty(ref.Name, "inline")
		}
		return compiler.Compile(doc)
	}
	if ref.Name == "" {
		return nil, errBadRequest{errors.New("either name or machine is required")}
	}
	return s.Loader.GetMachine(ctx, ref.Name)
}

func (s *Server) engineOptions(maxSteps int) []turing.Option {
	// A request may lower the server budget but never lift it.
	if maxSteps == 0 || (s.MaxSteps > 0 && maxSteps > s.MaxSteps) {
		maxSteps = s.MaxSteps
	}
	// Run events go through the hooks so the engine keeps its silent default logger.
	hooks := observability.LoggingHooks(s.Logger)
	if s.Metrics != nil {
		hooks = domain.MergeHooks(hooks, s.Metrics.Hooks())
	}
	return []turing.Option{
		turing.WithMaxSteps(maxSteps),
		turing.WithLifecycleHooks(hooks),
	}
}

func fromSnapshot(snap *domain.Snapshot) RunResponse {
	resp := RunResponse{
		RunID:  snap.RunID,
		Status: snap.Status,
		State:  snap.State,
		Tape:   snap.TapeString(),
		Head:   snap.Head,
		Steps:  snap.Steps,
		Trace:  snap.Trace,
	}
	if snap.Machine != nil {
		resp.Machine = snap.Machine.Name
	}
	if resp.Trace == nil {
		resp.Trace = []domain.TraceEntry{}
	}
	return resp
}

type errBadRequest struct{ err error }

func (e errBadRequest) Error() string { return e.err.Error() }
func (e errBadRequest) Unwrap() error { return e.err }

// decodeBody checks the JSON body of the POST operation at path against its
// OpenAPI schema and decodes it into v.
func (s *Server) decodeBody(r *http.Request, path string, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if schema := s.requestSchema(path); schema != nil {
		if err := schema.VisitJSON(generic); err != nil {
			return fmt.Errorf("request body does not match the %s schema: %w", path, err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	// Keep numeric symbols such as 0 and 1 as their literal text.
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) requestSchema(path string) *openapi3.Schema {
	item := s.spec.Paths.Find(path)
	if item == nil || item.Post == nil || item.Post.RequestBody == nil || item.Post.RequestBody.Value == nil {
		return nil
	}
	media := item.Post.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return nil
	}
	return media.Schema.Value
}

func (s *Server) badRequest(w http.ResponseWriter, op string, err error) {
	s.Logger.Warn(op+": invalid request", "err", err)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "bad_request"})
}

func (s *Server) unsupported(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotImplemented, ErrorResponse{
		Error: "run persistence is not enabled on this server",
		Kind:  "unsupported",
	})
}

// fail maps err to a status code and error kind.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	var bad errBadRequest
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.As(err, &bad):
		status, kind = http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrMachineNotFound), errors.Is(err, domain.ErrRunNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConfiguration):
		status, kind = http.StatusUnprocessableEntity, "configuration"
	case errors.Is(err, domain.ErrUnknownSymbolOrState):
		status, kind = http.StatusUnprocessableEntity, "unknown_symbol_or_state"
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err)
	} else {
		s.Logger.Debug(op+" rejected", "err", err, "status", status)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
