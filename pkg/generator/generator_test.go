package generator_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dukex/vislzr/pkg/generator"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type scriptedModel struct {
	calls     atomic.Int32
	responses []string
	errs      []error
}

func (m *scriptedModel) Generate(_ context.Context, _ string) (string, error) {
	i := int(m.calls.Add(1)) - 1

	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}

	if i < len(m.responses) {
		return m.responses[i], nil
	}

	return m.responses[len(m.responses)-1], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newGenerator(model generator.Model) *generator.Generator {
	return generator.New(testLogger(), model,
		generator.WithBackOff(func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
		}),
		generator.WithClock(func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }),
	)
}

const validGraph = `{
  "nodes": [
    {"id": "api", "label": "API", "type": "SERVICE", "status": "IN_PROGRESS", "priority": 3, "tags": ["backend"]},
    {"id": "db", "label": "Database", "type": "DATABASE", "status": "ok", "priority": 9}
  ],
  "edges": [{"source": "api", "target": "db", "kind": "depends"}]
}`

func nodeIDs(graph *models.Graph) []string {
	ids := make([]string, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		ids = append(ids, n.ID)
	}

	return ids
}

func TestGenerator_Fallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prompt string
		nodes  []string
		edges  int
	}{
		{"web keyword", "Build a web shop", []string{"frontend", "backend", "database", "deployment"}, 4},
		{"app keyword", "mobile APP", []string{"frontend", "backend", "database", "deployment"}, 4},
		{"plan keyword", "plan the launch", []string{"planning", "design", "development", "testing", "launch"}, 4},
		{"project keyword", "a new project", []string{"planning", "design", "development", "testing", "launch"}, 4},
		{"anything else", "write a novel", []string{"task1", "task2", "task3", "task4"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := newGenerator(nil).Generate(context.Background(), "p1", tt.prompt)

			assert.True(t, got.Fallback)
			assert.Equal(t, tt.nodes, nodeIDs(got.Graph))
			assert.Len(t, got.Graph.Edges, tt.edges)
			assert.NotNil(t, got.Graph.Milestones)

			for _, n := range got.Graph.Nodes {
				assert.Equal(t, "p1", n.ProjectID)
				assert.True(t, n.Status.Known())
			}
		})
	}
}

func TestGenerator_ParsesModelOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
	}{
		{"plain", validGraph},
		{"json fence", "```json\n" + validGraph + "\n```"},
		{"bare fence", "```\n" + validGraph + "\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			model := &scriptedModel{responses: []string{tt.response}}
			got := newGenerator(model).Generate(context.Background(), "p1", "anything")

			require.False(t, got.Fallback)
			require.Len(t, got.Graph.Nodes, 2)

			api, db := got.Graph.Nodes[0], got.Graph.Nodes[1]
			assert.Equal(t, models.NodeTypeService, api.Type)
			assert.Equal(t, models.NodeStatusInProgress, api.Status)
			assert.Equal(t, 3, api.Priority)
			assert.Equal(t, models.NodeStatusIdle, db.Status)
			assert.Equal(t, models.DefaultNodePriority, db.Priority)
			assert.Equal(t, []string{}, db.Tags)

			require.Len(t, got.Graph.Edges, 1)
			assert.Equal(t, models.EdgeTypeDependency, got.Graph.Edges[0].Type)
			assert.Equal(t, int32(1), model.calls.Load())
		})
	}
}

func TestGenerator_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{
		errs:      []error{errors.New("connection reset"), genai.APIError{Code: http.StatusServiceUnavailable}},
		responses: []string{"", "", validGraph},
	}

	got := newGenerator(model).Generate(context.Background(), "p1", "anything")

	assert.False(t, got.Fallback)
	assert.Equal(t, int32(3), model.calls.Load())
}

func TestGenerator_FallsBackWithoutRetrying(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		model *scriptedModel
	}{
		{"invalid json", &scriptedModel{responses: []string{"not json"}}},
		{"no nodes", &scriptedModel{responses: []string{`{"nodes": [], "edges": []}`}}},
		{"dangling edge", &scriptedModel{responses: []string{`{"nodes": [{"id": "a", "label": "A"}], "edges": [{"source": "a", "target": "b"}]}`}}},
		{"duplicate ids", &scriptedModel{responses: []string{`{"nodes": [{"id": "a"}, {"id": "a"}]}`}}},
		{"client error", &scriptedModel{errs: []error{genai.APIError{Code: http.StatusBadRequest}}, responses: []string{validGraph}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := newGenerator(tt.model).Generate(context.Background(), "p1", "web app")

			assert.True(t, got.Fallback)
			assert.Equal(t, "frontend", got.Graph.Nodes[0].ID)
			assert.Equal(t, int32(1), tt.model.calls.Load())
		})
	}
}

func TestGenerator_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	failure := errors.New("unavailable")
	model := &scriptedModel{errs: []error{failure, failure, failure, failure, failure}, responses: []string{validGraph}}

	got := newGenerator(model).Generate(context.Background(), "p1", "plan")

	assert.True(t, got.Fallback)
	assert.Equal(t, int32(4), model.calls.Load())
}

func TestGeminiModel_Generate(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"nodes\": []}"}]}}]}`)
	}))
	defer server.Close()

	model, err := generator.NewGeminiModel(context.Background(), testLogger(), "test-key", "", generator.WithBaseURL(server.URL))
	require.NoError(t, err)

	text, err := model.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes": []}`, text)
	assert.Equal(t, int32(1), requests.Load())
}

func TestNewGeminiModel_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := generator.NewGeminiModel(context.Background(), testLogger(), "", "")
	assert.Error(t, err)
}
