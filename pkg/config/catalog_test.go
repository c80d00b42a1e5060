package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/vislzr/pkg/config"
	"github.com/dukex/vislzr/pkg/handlers"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extension = `
actions:
  - id: estimate-ai
    label: Estimate
    icon: "⏱"
    type: ai
    category: ai
    handler: askAIHandler
    ai_powered: true
    priority: 60
rules:
  - id: idle-task-estimate
    node_types: [TASK]
    node_statuses: [IDLE]
    actions: [estimate-ai, view-details]
`

func testRegistry() *registry.Registry {
	return registry.NewDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(extension), 0o600))

	file, err := config.LoadCatalog(path)
	require.NoError(t, err)

	reg := testRegistry()
	before := len(reg.Actions())

	require.NoError(t, file.Apply(reg, handlers.Defaults()))

	action, ok := reg.Action("estimate-ai")
	require.True(t, ok)
	assert.Equal(t, models.ActionKindAI, action.Kind)
	assert.True(t, action.AIPowered)
	assert.Len(t, reg.Actions(), before+1)

	rule, ok := reg.ContextRule("idle-task-estimate")
	require.True(t, ok)
	assert.True(t, rule.Matches("TASK", "IDLE"))
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestCatalogFile_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown key",
			yaml:    "actions:\n  - id: x\n    colour: red\n",
			wantErr: "failed to parse catalog YAML",
		},
		{
			name:    "unknown handler",
			yaml:    "actions:\n  - {id: x, label: X, type: view, category: foundational, handler: nopeHandler}\n",
			wantErr: `unknown handler "nopeHandler"`,
		},
		{
			name:    "invalid action",
			yaml:    "actions:\n  - {id: x, label: X, type: teleport, category: foundational, handler: askAIHandler}\n",
			wantErr: `invalid action "x"`,
		},
		{
			name:    "rule grants unknown action",
			yaml:    "rules:\n  - {id: r, node_types: [TASK], actions: [ghost]}\n",
			wantErr: `unknown action "ghost"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file, err := config.ParseCatalog([]byte(tt.yaml))
			if err == nil {
				err = file.Apply(testRegistry(), handlers.Defaults())
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
