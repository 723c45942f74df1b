package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	h, err := NewHandler(memory.NewLibraryLoader(), opts...)
	require.NoError(t, err)
	return h
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestLoadSpec(t *testing.T) {
	spec, err := LoadSpec()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", spec.Info.Version)
	assert.NotNil(t, spec.Paths.Find("/run"))
	assert.NotNil(t, spec.Paths.Find("/machines/{name}/graph"))
}

func TestServer_Machines(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/machines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string][]string](t, w)
	assert.Equal(t, []string{"binary-multiplier", "unary-increment"}, list["machines"])

	w = do(t, h, "GET", "/machines/unary-increment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[domain.Machine](t, w)
	assert.Equal(t, domain.State("start"), m.Initial)

	w = do(t, h, "GET", "/machines/unary-increment/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph LR\n"))

	w = do(t, h, "GET", "/machines/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, w).Kind)
}

func TestServer_Run(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		body   RunRequest
		code   int
		status domain.RunStatus
		tape   string
		steps  int
	}{
		{
			name:   "Halts",
			body:   RunRequest{MachineRef: MachineRef{Name: "binary-multiplier"}, Tape: "11_11"},
			code:   http.StatusOK,
			status: domain.StatusHalted,
			tape:   "_1001_______",
			steps:  92,
		},
		{
			name:   "Rejects",
			body:   RunRequest{MachineRef: MachineRef{Name: "binary-multiplier"}, Tape: "11*11"},
			code:   http.StatusOK,
			status: domain.StatusRejected,
			steps:  4,
		},
		{
			name:   "StepLimit",
			body:   RunRequest{MachineRef: MachineRef{Name: "binary-multiplier"}, Tape: "11_11", MaxSteps: 10},
			code:   http.StatusOK,
			status: domain.StatusSuspended,
			steps:  10,
		},
		{
			name: "Inline",
			body: RunRequest{
				MachineRef: MachineRef{Machine: map[string]any{
					"initial": "q0",
					"final":   []any{"qf"},
					"rules":   []any{"q0, 1: q0, 0, R", "q0, _: qf, _, L"},
				}},
				Tape: "111",
			},
			code:   http.StatusOK,
			status: domain.StatusHalted,
			tape:   "000_",
			steps:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/run", tt.body)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			resp := decode[RunResponse](t, w)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.steps, resp.Steps)
			assert.Len(t, resp.Trace, tt.steps)
			if tt.tape != "" {
				assert.Equal(t, tt.tape, resp.Tape)
			}
			if tt.status != domain.StatusHalted {
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestServer_RunErrors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body any
		code int
		kind string
	}{
		{"MissingMachine", RunRequest{Tape: "1"}, http.StatusBadRequest, "bad_request"},
		{"UnknownMachine", RunRequest{MachineRef: MachineRef{Name: "ghost"}}, http.StatusNotFound, "not_found"},
		{"NegativeBudget", RunRequest{MachineRef: MachineRef{Name: "unary-increment"}, MaxSteps: -1}, http.StatusBadRequest, "bad_request"},
		{"InvalidInline", RunRequest{MachineRef: MachineRef{Machine: map[string]any{"initial": "q0", "final": []any{"q0"}, "rules": []any{"q0, 1: q1"}}}}, http.StatusUnprocessableEntity, "configuration"},
		{"Persistence", RunRequest{MachineRef: MachineRef{Name: "unary-increment"}, RunID: "r1"}, http.StatusNotImplemented, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/run", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Equal(t, tt.kind, decode[ErrorResponse](t, w).Kind)
		})
	}

	t.Run("SchemaViolations", func(t *testing.T) {
		for path, body := range map[string]string{
			"/run":    `{"name": 5}`,
			"/encode": `{"name": "unary-increment", "reject": "ghost"}`,
		} {
			req := httptest.NewRequest("POST", path, strings.NewReader(body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, "bad_request", resp.Kind)
			assert.Contains(t, resp.Error, "schema", path)
		}
	})

	t.Run("SingleFinalState", func(t *testing.T) {
		w := do(t, h, "POST", "/run", RunRequest{
			MachineRef: MachineRef{Machine: map[string]any{
				"initial": "q0",
				"final":   "qf",
				"rules":   []any{"q0, 1: q0, 0, right", "q0, _: qf, _, L"},
			}},
			Tape: "1",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, domain.StatusHalted, decode[RunResponse](t, w).Status)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/run", strings.NewReader("{"))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestServer_StepBudgetCap(t *testing.T) {
	h := newTestHandler(t, WithMaxSteps(10))

	tests := []struct {
		name     string
		maxSteps int
		steps    int
	}{
		{"ServerDefault", 0, 10},
		{"Lowered", 5, 5},
		{"CannotLift", 1000, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/run", RunRequest{
				MachineRef: MachineRef{Name: "binary-multiplier"},
				Tape:       "11_11",
				MaxSteps:   tt.maxSteps,
			})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			resp := decode[RunResponse](t, w)
			assert.Equal(t, domain.StatusSuspended, resp.Status)
			assert.Equal(t, tt.steps, resp.Steps)
		})
	}
}

func TestServer_Encode(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/encode", EncodeRequest{MachineRef: MachineRef{Name: "unary-increment"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[EncodeResponse](t, w)
	assert.Equal(t, "unary-increment", resp.Machine)
	assert.Equal(t, "0001110110111100101101101102110110110110110211011021021011011110011102111", resp.Encoding)

	w = do(t, h, "POST", "/encode", EncodeRequest{MachineRef: MachineRef{Name: "unary-increment"}, Reject: []string{"ghost"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestServer_Runs(t *testing.T) {
	sessions := session.NewManager(memory.NewStore())
	h := newTestHandler(t, WithSessions(sessions))

	w := do(t, h, "POST", "/run", RunRequest{
		MachineRef: MachineRef{Name: "binary-multiplier"},
		Tape:       "11_11",
		MaxSteps:   40,
		RunID:      "mult",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusSuspended, decode[RunResponse](t, w).Status)

	w = do(t, h, "GET", "/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"mult"}, decode[map[string][]string](t, w)["runs"])

	w = do(t, h, "GET", "/runs/mult", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40, decode[RunResponse](t, w).Steps)

	w = do(t, h, "POST", "/runs/mult/resume", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[RunResponse](t, w)
	assert.Equal(t, domain.StatusHalted, resp.Status)
	assert.Equal(t, 92, resp.Steps)
	assert.Equal(t, "_1001_______", resp.Tape)
	assert.Equal(t, "mult", resp.RunID)

	w = do(t, h, "GET", "/runs/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, "POST", "/runs/ghost/resume", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RunsDisabled(t *testing.T) {
	h := newTestHandler(t)
	for _, path := range []string{"/runs", "/runs/x"} {
		assert.Equal(t, http.StatusNotImplemented, do(t, h, "GET", path, nil).Code, path)
	}
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	h := newTestHandler(t, WithMetrics(metrics, reg))

	w := do(t, h, "POST", "/run", RunRequest{MachineRef: MachineRef{Name: "unary-increment"}, Tape: "11"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `turing_steps_total{machine="unary-increment"} 3`)
	assert.Contains(t, body, `turing_runs_total{machine="unary-increment",outcome="halted"} 1`)
}

func TestServer_Meta(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/health", nil)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])

	w = do(t, h, "GET", "/info", nil)
	info := decode[map[string]string](t, w)
	assert.Equal(t, "turing-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])

	w = do(t, h, "GET", "/openapi.yaml", nil)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, "OPTIONS", "/run", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
