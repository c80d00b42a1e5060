package registry

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/dukex/vislzr/pkg/handlers"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault_LoadsCatalog(t *testing.T) {
	t.Parallel()

	r := NewDefault(slog.Default())

	assert.Len(t, r.Actions(), 33)
	assert.Len(t, r.ContextRules(), 20)

	action, ok := r.Action("update-progress")
	require.True(t, ok)
	assert.Equal(t, string(handlers.UpdateProgress), action.Handler)
	assert.Equal(t, 110, action.Priority)

	_, ok = r.Action("does-not-exist")
	assert.False(t, ok)

	rule, ok := r.ContextRule("task-idle")
	require.True(t, ok)
	assert.Equal(t, []string{"IDLE", "PLANNED"}, rule.NodeStatuses)
}

func TestDefaults_RulesReferenceKnownActions(t *testing.T) {
	t.Parallel()

	r := NewDefault(slog.Default())

	for _, rule := range r.ContextRules() {
		for _, id := range rule.Actions {
			_, ok := r.Action(id)
			assert.True(t, ok, "rule %s grants unknown action %s", rule.ID, id)
		}
	}
}

func TestDefaults_GroupsHaveMembers(t *testing.T) {
	t.Parallel()

	r := NewDefault(slog.Default())

	scans := r.ActionsByGroup(GroupScans)
	ids := make([]string, 0, len(scans))
	for _, a := range scans {
		ids = append(ids, a.ID)
	}

	assert.ElementsMatch(t, []string{
		"security-scan", "compliance-scan", "optimization-scan",
		"architectural-scan", "performance-scan", "code-quality-scan",
	}, ids)

	assert.Len(t, r.ActionsByGroup(GroupAIActions), 4)
	assert.Empty(t, r.ActionsByGroup(GroupIntegrations))
	assert.Empty(t, r.ActionsByGroup(""))
}

func TestRegisterAction_Upserts(t *testing.T) {
	t.Parallel()

	r := New(slog.Default())

	action := models.Action{
		ID:       "custom",
		Label:    "Custom",
		Kind:     models.ActionKindView,
		Category: models.ActionCategoryFoundational,
		Handler:  "customHandler",
		Priority: 5,
	}
	require.NoError(t, r.RegisterAction(action))

	action.Label = "Renamed"
	require.NoError(t, r.RegisterAction(action))

	all := r.Actions()
	require.Len(t, all, 1)
	assert.Equal(t, "Renamed", all[0].Label)
}

func TestRegisterAction_Validates(t *testing.T) {
	t.Parallel()

	r := New(slog.Default())

	tests := []struct {
		name   string
		action models.Action
	}{
		{"missing id", models.Action{Label: "x", Kind: models.ActionKindView, Category: models.ActionCategoryAI, Handler: "h"}},
		{"bad kind", models.Action{ID: "x", Label: "x", Kind: "magic", Category: models.ActionCategoryAI, Handler: "h"}},
		{"priority out of range", models.Action{ID: "x", Label: "x", Kind: models.ActionKindView, Category: models.ActionCategoryAI, Handler: "h", Priority: 1001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Error(t, r.RegisterAction(tt.action))
		})
	}

	assert.Empty(t, r.Actions())
}

func TestRegisterContextRule_KeepsPosition(t *testing.T) {
	t.Parallel()

	r := New(slog.Default())

	require.NoError(t, r.RegisterContextRule(models.ContextRule{ID: "a", NodeTypes: []string{"FILE"}, Actions: []string{"x"}}))
	require.NoError(t, r.RegisterContextRule(models.ContextRule{ID: "b", NodeTypes: []string{"FILE"}, Actions: []string{"y"}}))
	require.NoError(t, r.RegisterContextRule(models.ContextRule{ID: "a", NodeTypes: []string{"TASK"}, Actions: []string{"z"}}))

	rules := r.ContextRules()
	require.Len(t, rules, 2)
	assert.Equal(t, "a", rules[0].ID)
	assert.Equal(t, []string{"TASK"}, rules[0].NodeTypes)

	require.Error(t, r.RegisterContextRule(models.ContextRule{ID: "c", NodeTypes: []string{"FILE"}}))
}

func TestContextRules_ReturnCopies(t *testing.T) {
	t.Parallel()

	r := NewDefault(slog.Default())

	rule, ok := r.ContextRule("task-idle")
	require.True(t, ok)

	want := rule.Clone()

	rule.NodeTypes[0] = "GALAXY"
	rule.NodeStatuses[0] = "LOST"
	rule.Actions[0] = "ghost"

	rules := r.ContextRules()
	for i := range rules {
		if rules[i].ID == "task-idle" {
			rules[i].Actions[0] = "ghost"
		}
	}

	again, ok := r.ContextRule("task-idle")
	require.True(t, ok)
	assert.Equal(t, want, again)
	assert.True(t, again.Matches("TASK", "IDLE"))
}

func TestSnapshot_IsStableAcrossRegistration(t *testing.T) {
	t.Parallel()

	r := NewDefault(slog.Default())
	before := r.Snapshot()

	require.NoError(t, r.RegisterAction(models.Action{
		ID: "late", Label: "Late", Kind: models.ActionKindView,
		Category: models.ActionCategoryFoundational, Handler: "h", Priority: 1,
	}))

	_, ok := before.Action("late")
	assert.False(t, ok)

	_, ok = r.Snapshot().Action("late")
	assert.True(t, ok)
}

func TestRegistry_ConcurrentReadsAndWrites(t *testing.T) {
	t.Parallel()

	r := NewDefault(slog.Default())

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			_ = r.RegisterAction(models.Action{
				ID: fmt.Sprintf("extra-%d", i), Label: "Extra", Kind: models.ActionKindAI,
				Category: models.ActionCategoryAI, Handler: "h", Priority: 999,
			})
		}()

		go func() {
			defer wg.Done()

			for _, rule := range r.ContextRules() {
				_ = r.ActionsByGroup(GroupScans)
				_, _ = r.ContextRule(rule.ID)
			}
		}()
	}

	wg.Wait()
	assert.Len(t, r.Actions(), 33+8)
}
