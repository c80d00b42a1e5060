package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/dukex/vislzr/pkg/executor"
	"github.com/dukex/vislzr/pkg/generator"
	"github.com/dukex/vislzr/pkg/handlers"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/otelhelper"
	"github.com/dukex/vislzr/pkg/persistence/file"
	"github.com/dukex/vislzr/pkg/registry"
	"github.com/dukex/vislzr/pkg/services"
	"github.com/dukex/vislzr/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	reg := registry.NewDefault(logger)
	exec := executor.New(logger, otelhelper.Noop(), handlers.Defaults())

	h := web.NewAPIHandlers(web.Services{
		Project:    services.NewProject(logger, store, nil),
		Graph:      services.NewGraph(logger, store, nil),
		Node:       services.NewNode(logger, store, nil),
		Edge:       services.NewEdge(logger, store, nil),
		Milestone:  services.NewMilestone(logger, store, nil),
		Action:     services.NewAction(logger, otelhelper.Noop(), store, reg, exec, nil),
		Generation: services.NewGeneration(logger, store, generator.New(logger, nil)),
	}, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	h.Register(app)

	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(t, err)

			raw = string(encoded)
		}

		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func problemType(t *testing.T, body []byte) string {
	t.Helper()

	var problem map[string]any
	require.NoError(t, json.Unmarshal(body, &problem))

	typ, _ := problem["type"].(string)

	return typ
}

// seed creates project p1 with an in-progress task t1.
func seed(t *testing.T, app *fiber.App) {
	t.Helper()

	status, body := do(t, app, http.MethodPost, "/projects", web.CreateProjectRequest{ID: "p1", Name: "Launch"})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = do(t, app, http.MethodPost, "/projects/p1/nodes", web.CreateNodeRequest{
		ID: "t1", Label: "Build API", Type: "TASK", Status: "IN_PROGRESS", Progress: 40,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
}

func TestAPIHandlers_Projects(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := do(t, app, http.MethodGet, "/projects", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	seed(t, app)

	status, body = do(t, app, http.MethodPost, "/projects", web.CreateProjectRequest{ID: "p1", Name: "Again"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", problemType(t, body))

	status, body = do(t, app, http.MethodPost, "/projects", map[string]any{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", problemType(t, body))

	status, body = do(t, app, http.MethodPatch, "/projects/p1", map[string]any{"description": "Q3"})
	require.Equal(t, http.StatusOK, status)

	var project models.Project
	require.NoError(t, json.Unmarshal(body, &project))
	assert.Equal(t, "Launch", project.Name)
	assert.Equal(t, "Q3", project.Description)

	status, _ = do(t, app, http.MethodDelete, "/projects/p1", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = do(t, app, http.MethodGet, "/projects/p1", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "project_not_found", problemType(t, body))
}

func TestAPIHandlers_NodeValidation(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	seed(t, app)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"malformed json", `{"label":`, http.StatusBadRequest},
		{"missing label", map[string]any{"type": "TASK"}, http.StatusBadRequest},
		{"priority out of range", map[string]any{"label": "X", "type": "TASK", "priority": 9}, http.StatusBadRequest},
		{"progress out of range", map[string]any{"label": "X", "type": "TASK", "progress": 120}, http.StatusBadRequest},
		{"unknown type", map[string]any{"label": "X", "type": "SPACESHIP"}, http.StatusBadRequest},
		{"valid", map[string]any{"label": "X", "type": "idea"}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, http.MethodPost, "/projects/p1/nodes", tt.body)
			assert.Equal(t, tt.status, status, string(body))
		})
	}

	status, body := do(t, app, http.MethodGet, "/projects/p1/nodes/ghost", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "node_not_found", problemType(t, body))

	status, body = do(t, app, http.MethodPost, "/projects/p1/nodes", map[string]any{"id": "t1", "label": "Clobber", "type": "NOTE"})
	assert.Equal(t, http.StatusConflict, status, string(body))
	assert.Equal(t, "conflict", problemType(t, body))

	status, body = do(t, app, http.MethodGet, "/projects/p1/nodes/t1", nil)
	require.Equal(t, http.StatusOK, status)

	var node models.Node
	require.NoError(t, json.Unmarshal(body, &node))
	assert.Equal(t, "Build API", node.Label)
	assert.Equal(t, models.NodeStatusInProgress, node.Status)
}

func TestAPIHandlers_ExecuteAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		path        string
		body        any
		status      int
		problem     string
		wantResult  models.ExecutionStatus
		wantMessage string
	}{
		{
			name:       "success",
			path:       "/projects/p1/nodes/t1/actions/update-progress",
			body:       web.ExecuteActionRequest{Params: map[string]any{"progress": 100}},
			status:     http.StatusOK,
			wantResult: models.ExecutionStatusSuccess,
		},
		{
			name:        "handler failure is still 200",
			path:        "/projects/p1/nodes/t1/actions/update-progress",
			body:        web.ExecuteActionRequest{Params: map[string]any{"progress": 150}},
			status:      http.StatusOK,
			wantResult:  models.ExecutionStatusFailed,
			wantMessage: "Progress must be between 0 and 100",
		},
		{
			name:    "action outside context",
			path:    "/projects/p1/nodes/t1/actions/start-task",
			status:  http.StatusForbidden,
			problem: "action_not_available",
		},
		{
			name:    "unknown action",
			path:    "/projects/p1/nodes/t1/actions/launch-rocket",
			status:  http.StatusNotFound,
			problem: "action_not_found",
		},
		{
			name:    "unknown node",
			path:    "/projects/p1/nodes/ghost/actions/mark-complete",
			status:  http.StatusNotFound,
			problem: "node_not_found",
		},
		{
			name:    "unknown project",
			path:    "/projects/p9/nodes/t1/actions/mark-complete",
			status:  http.StatusNotFound,
			problem: "project_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := setupTestApp(t)
			seed(t, app)

			status, body := do(t, app, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, status, string(body))

			if tt.problem != "" {
				assert.Equal(t, tt.problem, problemType(t, body))

				return
			}

			var result models.ExecutionResult
			require.NoError(t, json.Unmarshal(body, &result))
			assert.Equal(t, tt.wantResult, result.Status)
			assert.Equal(t, tt.wantMessage, result.ErrorMessage)

			status, body = do(t, app, http.MethodGet, "/projects/p1/nodes/t1/actions/history?limit=5", nil)
			require.Equal(t, http.StatusOK, status)

			var history []models.ActionHistory
			require.NoError(t, json.Unmarshal(body, &history))
			require.Len(t, history, 1)
			assert.Equal(t, tt.wantResult, history[0].Status)
		})
	}
}

func TestAPIHandlers_NodeActions(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	seed(t, app)

	status, body := do(t, app, http.MethodGet, "/projects/p1/nodes/t1/actions", nil)
	require.Equal(t, http.StatusOK, status)

	var views []models.ActionView
	require.NoError(t, json.Unmarshal(body, &views))
	assert.Len(t, views, 6)

	status, body = do(t, app, http.MethodGet, "/projects/p1/nodes/t1/actions/no-such-group/expand", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, _ = do(t, app, http.MethodGet, "/projects/p1/nodes/t1/actions/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPIHandlers_Catalog(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := do(t, app, http.MethodGet, "/actions", nil)
	require.Equal(t, http.StatusOK, status)

	var views []map[string]any
	require.NoError(t, json.Unmarshal(body, &views))
	require.NotEmpty(t, views)
	assert.NotContains(t, views[0], "handler")

	status, body = do(t, app, http.MethodGet, "/actions/update-progress/schema", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"progress"`)

	status, _ = do(t, app, http.MethodGet, "/actions/launch-rocket/schema", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_Graph(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	seed(t, app)

	graph := map[string]any{
		"project": map[string]any{"id": "p1", "name": "Launch"},
		"nodes": []map[string]any{
			{"id": "a", "label": "A", "type": "TASK"},
			{"id": "b", "label": "B", "type": "TASK"},
		},
		"edges": []map[string]any{{"source": "a", "target": "b", "type": "dependency"}},
	}

	status, body := do(t, app, http.MethodPut, "/projects/p1/graph", graph)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = do(t, app, http.MethodGet, "/projects/p1/graph", nil)
	require.Equal(t, http.StatusOK, status)

	var got models.Graph
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Len(t, got.Nodes, 2)
	assert.Len(t, got.Edges, 1)
	assert.Empty(t, got.Milestones)

	graph["project"] = map[string]any{"id": "other", "name": "Launch"}
	status, _ = do(t, app, http.MethodPut, "/projects/p1/graph", graph)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPIHandlers_EdgesAndMilestones(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	seed(t, app)

	status, body := do(t, app, http.MethodPost, "/projects/p1/edges", web.CreateEdgeRequest{Source: "t1", Target: "ghost", Type: "dependency"})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	status, body = do(t, app, http.MethodPost, "/projects/p1/milestones", web.CreateMilestoneRequest{Title: "Beta", Date: "2026-13-40"})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	status, body = do(t, app, http.MethodPost, "/projects/p1/milestones", web.CreateMilestoneRequest{Title: "Beta", Date: "2026-06-01", LinkedNodes: []string{"t1"}})
	require.Equal(t, http.StatusCreated, status, string(body))

	var milestone models.Milestone
	require.NoError(t, json.Unmarshal(body, &milestone))

	status, _ = do(t, app, http.MethodDelete, "/projects/p1/milestones/"+milestone.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = do(t, app, http.MethodDelete, "/projects/p1/edges/ghost", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "edge_not_found", problemType(t, body))
}

func TestAPIHandlers_GenerateGraph(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	seed(t, app)

	status, body := do(t, app, http.MethodPost, "/projects/p1/ai/generate", web.GenerateGraphRequest{Prompt: "a web app"})
	require.Equal(t, http.StatusOK, status, string(body))

	var resp struct {
		models.Graph

		Fallback bool `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.True(t, resp.Fallback)
	assert.Equal(t, "p1", resp.Project.ID)
	assert.Len(t, resp.Nodes, 4)

	status, _ = do(t, app, http.MethodPost, "/projects/p1/ai/generate", map[string]any{"prompt": ""})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/projects/p9/ai/generate", web.GenerateGraphRequest{Prompt: "plan"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := do(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"healthy"`)
}
