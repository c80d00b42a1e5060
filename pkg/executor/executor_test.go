package executor

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/vislzr/pkg/handlers"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/otelhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.FixedZone("BRT", -3*60*60))

func newExecutor(table *handlers.Table) *Executor {
	return New(slog.Default(), otelhelper.Noop(), table, WithClock(func() time.Time { return fixedNow }))
}

func node(status models.NodeStatus, progress int) *models.Node {
	return &models.Node{
		ID:       "task-1",
		Label:    "Task",
		Type:     models.NodeTypeTask,
		Status:   status,
		Priority: 3,
		Progress: progress,
		Tags:     []string{"backend"},
	}
}

func TestExecute_UpdateProgressToCompletion(t *testing.T) {
	t.Parallel()

	e := newExecutor(handlers.Defaults())
	n := node(models.NodeStatusInProgress, 40)

	result := e.Execute(context.Background(), "update-progress", string(handlers.UpdateProgress), n, map[string]any{"progress": float64(100)})

	assert.Equal(t, models.ExecutionStatusSuccess, result.Status)
	assert.Equal(t, "update-progress", result.ActionID)
	assert.Equal(t, "task-1", result.NodeID)
	assert.Empty(t, result.ErrorMessage)
	assert.Equal(t, 40, result.Result["old_progress"])
	assert.Equal(t, 100, result.Result["new_progress"])
	assert.Equal(t, fixedNow.UTC(), result.ExecutedAt)
	assert.Equal(t, time.UTC, result.ExecutedAt.Location())

	assert.Equal(t, models.NodeStatusCompleted, n.Status)
	assert.Equal(t, 100, n.Progress)
}

func TestExecute_UpdateProgressOutOfRange(t *testing.T) {
	t.Parallel()

	e := newExecutor(handlers.Defaults())
	n := node(models.NodeStatusInProgress, 40)

	result := e.Execute(context.Background(), "update-progress", string(handlers.UpdateProgress), n, map[string]any{"progress": float64(150)})

	assert.Equal(t, models.ExecutionStatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "between 0 and 100")
	assert.Nil(t, result.Result)
	assert.Equal(t, 40, n.Progress)
	assert.Equal(t, models.NodeStatusInProgress, n.Status)
}

func TestExecute_PauseResumeFromCompleted(t *testing.T) {
	t.Parallel()

	e := newExecutor(handlers.Defaults())
	n := node(models.NodeStatusCompleted, 100)
	before := n.Clone()

	result := e.Execute(context.Background(), "pause-resume", string(handlers.PauseResume), n, nil)

	assert.Equal(t, models.ExecutionStatusFailed, result.Status)
	assert.Equal(t, "Cannot pause/resume from status: COMPLETED", result.ErrorMessage)
	assert.Equal(t, before, n)
}

func TestExecute_UnknownHandler(t *testing.T) {
	t.Parallel()

	e := newExecutor(handlers.Defaults())
	n := node(models.NodeStatusIdle, 0)

	result := e.Execute(context.Background(), "code-quality-scan", string(handlers.CodeQualityScan), n, nil)

	assert.Equal(t, models.ExecutionStatusFailed, result.Status)
	assert.Equal(t, "Handler not found: codeQualityScanHandler", result.ErrorMessage)
	assert.Equal(t, models.NodeStatusIdle, n.Status)
}

func TestExecute_StrictParamsRejected(t *testing.T) {
	t.Parallel()

	e := newExecutor(handlers.Defaults())
	n := node(models.NodeStatusInProgress, 10)

	result := e.Execute(context.Background(), "update-progress", string(handlers.UpdateProgress), n, map[string]any{"progress": "lots"})

	assert.Equal(t, models.ExecutionStatusFailed, result.Status)
	assert.Contains(t, result.ErrorMessage, "invalid params")
	assert.Equal(t, 10, n.Progress)
}

func TestExecute_AdvisorySchemaNotEnforced(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		actionID string
		handler  handlers.ID
		params   map[string]any
		check    func(t *testing.T, result map[string]any)
	}{
		{
			name:     "add-task priority above range",
			actionID: "add-task",
			handler:  handlers.AddTask,
			params:   map[string]any{"priority": float64(7)},
			check: func(t *testing.T, result map[string]any) {
				t.Helper()
				assert.Equal(t, map[string]any{"priority": float64(7)}, result["task_params"])
			},
		},
		{
			name:     "add-milestone free form date",
			actionID: "add-milestone",
			handler:  handlers.AddMilestone,
			params:   map[string]any{"date": "next week"},
			check: func(t *testing.T, result map[string]any) {
				t.Helper()
				assert.Equal(t, map[string]any{"date": "next week"}, result["milestone_params"])
			},
		},
		{
			name:     "ask-ai numeric query",
			actionID: "ask-ai",
			handler:  handlers.AskAI,
			params:   map[string]any{"query": float64(42)},
			check: func(t *testing.T, result map[string]any) {
				t.Helper()
				assert.Equal(t, "", result["query"])
				assert.Equal(t, "pending", result["status"])
			},
		},
		{
			name:     "expand-group numeric group",
			actionID: "expand-group",
			handler:  handlers.ExpandGroup,
			params:   map[string]any{"group_id": float64(1)},
			check: func(t *testing.T, result map[string]any) {
				t.Helper()
				assert.Equal(t, "task-1", result["node_id"])
			},
		},
	}

	e := newExecutor(handlers.Defaults())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := node(models.NodeStatusIdle, 0)

			result := e.Execute(context.Background(), tt.actionID, string(tt.handler), n, tt.params)

			require.Equal(t, models.ExecutionStatusSuccess, result.Status, result.ErrorMessage)
			tt.check(t, result.Result)
			assert.Equal(t, models.NodeStatusIdle, n.Status)
		})
	}
}

func TestExecute_SuccessAlwaysCarriesPayload(t *testing.T) {
	t.Parallel()

	table := handlers.NewTable()
	table.Register("silent", handlers.Func{Fn: func(context.Context, *models.Node, handlers.Params) (map[string]any, error) {
		return nil, nil
	}})

	result := newExecutor(table).Execute(context.Background(), "silent", "silent", node(models.NodeStatusIdle, 0), nil)

	assert.Equal(t, models.ExecutionStatusSuccess, result.Status)
	assert.NotNil(t, result.Result)
	assert.Empty(t, result.Result)
}

func TestExecute_RecoversHandlerFailures(t *testing.T) {
	t.Parallel()

	table := handlers.NewTable()
	table.Register("boom", handlers.Func{Fn: func(_ context.Context, n *models.Node, _ handlers.Params) (map[string]any, error) {
		n.Status = models.NodeStatusError
		panic("kaboom")
	}})
	table.Register("broken", handlers.Func{Fn: func(_ context.Context, n *models.Node, _ handlers.Params) (map[string]any, error) {
		n.Progress = 99

		return nil, errors.New("upstream unavailable")
	}})

	e := newExecutor(table)

	tests := []struct {
		handler string
		message string
	}{
		{"boom", "handler panicked: kaboom"},
		{"broken", "upstream unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.handler, func(t *testing.T) {
			t.Parallel()

			n := node(models.NodeStatusIdle, 5)
			result := e.Execute(context.Background(), tt.handler, tt.handler, n, nil)

			assert.Equal(t, models.ExecutionStatusFailed, result.Status)
			assert.Equal(t, tt.message, result.ErrorMessage)
			assert.Equal(t, models.NodeStatusIdle, n.Status)
			assert.Equal(t, 5, n.Progress)
		})
	}
}

func TestExecute_OnlyWritesStatusAndProgress(t *testing.T) {
	t.Parallel()

	table := handlers.NewTable()
	table.Register("greedy", handlers.Func{Fn: func(_ context.Context, n *models.Node, _ handlers.Params) (map[string]any, error) {
		n.Label = "changed"
		n.Tags = append(n.Tags, "extra")
		n.Status = models.NodeStatusInProgress

		return map[string]any{}, nil
	}})

	n := node(models.NodeStatusIdle, 0)
	result := newExecutor(table).Execute(context.Background(), "greedy", "greedy", n, nil)

	require.True(t, result.Succeeded())
	assert.Equal(t, "Task", n.Label)
	assert.Equal(t, []string{"backend"}, n.Tags)
	assert.Equal(t, models.NodeStatusInProgress, n.Status)
}

func TestSchema(t *testing.T) {
	t.Parallel()

	e := newExecutor(handlers.Defaults())

	schema, ok := e.Schema(string(handlers.UpdateProgress))
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])

	_, ok = e.Schema("missing")
	assert.False(t, ok)
}
