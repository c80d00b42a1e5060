package registry

import (
	"github.com/dukex/vislzr/pkg/handlers"
	"github.com/dukex/vislzr/pkg/models"
)

const (
	GroupScans        = "scans-group"
	GroupAIActions    = "ai-actions-group"
	GroupIntegrations = "integrations-group"
)

func view(id, label, icon string, handler handlers.ID, requiresContext bool, priority int) models.Action {
	return models.Action{
		ID:              id,
		Label:           label,
		Icon:            icon,
		Kind:            models.ActionKindView,
		Category:        models.ActionCategoryFoundational,
		Handler:         string(handler),
		RequiresContext: requiresContext,
		Priority:        priority,
	}
}

func create(id, label, icon string, handler handlers.ID, priority int) models.Action {
	return models.Action{
		ID:              id,
		Label:           label,
		Icon:            icon,
		Kind:            models.ActionKindCreate,
		Category:        models.ActionCategoryFoundational,
		Handler:         string(handler),
		RequiresContext: true,
		Priority:        priority,
	}
}

func state(id, label, icon string, handler handlers.ID, priority int) models.Action {
	return models.Action{
		ID:              id,
		Label:           label,
		Icon:            icon,
		Kind:            models.ActionKindState,
		Category:        models.ActionCategoryFoundational,
		Handler:         string(handler),
		RequiresContext: true,
		Priority:        priority,
	}
}

func ai(id, label, icon, group string, handler handlers.ID, priority int) models.Action {
	return models.Action{
		ID:              id,
		Label:           label,
		Icon:            icon,
		Kind:            models.ActionKindAI,
		Category:        models.ActionCategoryAI,
		Group:           group,
		Handler:         string(handler),
		RequiresContext: true,
		AIPowered:       true,
		Priority:        priority,
	}
}

func group(id, label, icon string, priority int) models.Action {
	return models.Action{
		ID:       id,
		Label:    label,
		Icon:     icon,
		Kind:     models.ActionKindGroup,
		Category: models.ActionCategoryGrouped,
		Handler:  string(handlers.ExpandGroup),
		Priority: priority,
	}
}

// DefaultActions is the built-in action catalog.
func DefaultActions() []models.Action {
	return []models.Action{
		view("view-timeline", "Timeline", "📊", handlers.ViewTimeline, false, 10),
		view("view-status-log", "Status Log", "📝", handlers.ViewStatusLog, false, 20),
		view("view-dependencies", "Dependencies", "🔗", handlers.ViewDependencies, true, 30),
		view("view-details", "Details", "📄", handlers.ViewDetails, true, 40),
		view("view-schema", "Schema", "🗂", handlers.ViewSchema, true, 50),

		create("add-task", "Add Task", "➕", handlers.AddTask, 60),
		create("add-note", "Add Note", "➕", handlers.AddNote, 70),
		create("add-child", "Add Child", "➕", handlers.AddChild, 80),
		create("add-idea", "Add Idea", "➕", handlers.AddIdea, 90),
		create("add-milestone", "Add Milestone", "🏁", handlers.AddMilestone, 95),

		state("mark-complete", "Complete", "✓", handlers.MarkComplete, 100),
		state("update-progress", "Progress", "🔄", handlers.UpdateProgress, 110),
		state("pause-resume", "Pause/Resume", "⏸", handlers.PauseResume, 120),
		state("start-task", "Start", "🏃", handlers.StartTask, 130),

		ai("security-scan", "Security Scan", "🔒", GroupScans, handlers.SecurityScan, 200),
		ai("compliance-scan", "Compliance", "📋", GroupScans, handlers.ComplianceScan, 210),
		ai("check-updates", "Check Updates", "⬆️", "", handlers.CheckUpdates, 220),
		ai("dependency-audit", "Dependency Audit", "🔍", "", handlers.DependencyAudit, 230),
		ai("optimization-scan", "Optimization", "⚡", GroupScans, handlers.OptimizationScan, 240),
		ai("architectural-scan", "Architecture", "🏗", GroupScans, handlers.ArchitecturalScan, 250),
		ai("performance-scan", "Performance", "💾", GroupScans, handlers.PerformanceScan, 260),
		ai("code-quality-scan", "Code Quality", "♻️", GroupScans, handlers.CodeQualityScan, 270),
		ai("propose-features", "Propose Features", "💡", GroupAIActions, handlers.ProposeFeatures, 300),
		ai("ask-ai", "Ask AI", "❓", "", handlers.AskAI, 310),
		ai("refactor-code", "Refactor", "🔄", GroupAIActions, handlers.RefactorCode, 320),
		ai("generate-docs", "Generate Docs", "📝", GroupAIActions, handlers.GenerateDocs, 330),
		ai("generate-tests", "Generate Tests", "🧪", GroupAIActions, handlers.GenerateTests, 340),
		ai("unblock-ai", "Unblock", "🔓", "", handlers.UnblockAI, 400),
		ai("debug-ai", "Debug", "🐛", "", handlers.DebugAI, 410),
		ai("alternatives-ai", "Alternatives", "🔄", "", handlers.AlternativesAI, 420),

		group(GroupScans, "Scans", "🔍", 500),
		group(GroupAIActions, "AI Actions", "🤖", 510),
		group(GroupIntegrations, "Integrations", "🔗", 520),
	}
}

func rule(id string, types, statuses, actions []string, priority int) models.ContextRule {
	return models.ContextRule{
		ID:           id,
		NodeTypes:    types,
		NodeStatuses: statuses,
		Actions:      actions,
		Priority:     priority,
	}
}

func types(t ...models.NodeType) []string {
	out := make([]string, 0, len(t))
	for _, v := range t {
		out = append(out, string(v))
	}

	return out
}

func statuses(s ...models.NodeStatus) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		out = append(out, string(v))
	}

	return out
}

func ids(a ...string) []string { return a }

// DefaultContextRules is the built-in rule table.
func DefaultContextRules() []models.ContextRule {
	return []models.ContextRule{
		rule("root-actions", types(models.NodeTypeRoot), nil,
			ids("view-timeline", "view-status-log", GroupScans, "add-milestone", GroupAIActions), 10),

		rule("task-in-progress", types(models.NodeTypeTask), statuses(models.NodeStatusInProgress),
			ids("view-dependencies", "update-progress", "add-note", "ask-ai", "mark-complete", "pause-resume"), 20),
		rule("task-idle", types(models.NodeTypeTask), statuses(models.NodeStatusIdle, models.NodeStatusPlanned),
			ids("view-dependencies", "view-details", "start-task", "add-note", "ask-ai"), 30),
		rule("task-blocked", types(models.NodeTypeTask), statuses(models.NodeStatusBlocked),
			ids("view-dependencies", "unblock-ai", "add-note", "ask-ai"), 40),
		rule("task-overdue", types(models.NodeTypeTask), statuses(models.NodeStatusOverdue),
			ids("view-dependencies", "update-progress", "mark-complete", "add-note"), 50),
		rule("task-completed", types(models.NodeTypeTask), statuses(models.NodeStatusCompleted),
			ids("view-details", "view-dependencies", "add-note"), 60),

		rule("file-actions", types(models.NodeTypeFile), nil,
			ids("view-details", "add-note", "ask-ai", "refactor-code", "generate-tests", "code-quality-scan"), 70),

		rule("service-running", types(models.NodeTypeService), statuses(models.NodeStatusRunning),
			ids("view-details", "pause-resume", "performance-scan", "security-scan", "add-note"), 80),
		rule("service-error", types(models.NodeTypeService), statuses(models.NodeStatusError),
			ids("view-details", "debug-ai", "pause-resume", "ask-ai", "add-note"), 90),
		rule("service-stopped", types(models.NodeTypeService), statuses(models.NodeStatusStopped),
			ids("view-details", "start-task", "add-note"), 100),

		rule("database-actions", types(models.NodeTypeDatabase), nil,
			ids("view-schema", "view-details", "security-scan", "performance-scan", "add-note"), 110),
		rule("security-actions", types(models.NodeTypeSecurity), nil,
			ids("view-details", "add-task", "ask-ai", "add-note"), 120),
		rule("dependency-actions", types(models.NodeTypeDependency), nil,
			ids("view-details", "check-updates", "security-scan", "alternatives-ai", "add-note"), 130),
		rule("folder-actions", types(models.NodeTypeFolder), nil,
			ids("view-details", "add-child", "add-note", "architectural-scan"), 140),
		rule("component-actions", types(models.NodeTypeComponent), nil,
			ids("view-details", "view-dependencies", "add-note", "ask-ai", "refactor-code", "generate-tests", "code-quality-scan"), 150),
		rule("api-endpoint-actions", types(models.NodeTypeAPIEndpoint), nil,
			ids("view-details", "view-dependencies", "security-scan", "performance-scan", "generate-tests", "add-note"), 160),
		rule("milestone-actions", types(models.NodeTypeMilestone), nil,
			ids("view-details", "view-dependencies", "view-timeline", "add-note"), 170),
		rule("idea-actions", types(models.NodeTypeIdea), nil,
			ids("view-details", "add-task", "ask-ai", "propose-features", "add-note"), 180),
		rule("note-actions", types(models.NodeTypeNote), nil,
			ids("view-details", "add-note"), 190),
		rule("agent-actions", types(models.NodeTypeAgent), nil,
			ids("view-details", "pause-resume", "view-status-log", "add-note"), 200),
	}
}

// RegisterDefaults loads the built-in actions and rules. The built-ins are
// valid by construction, so a failure here is a programming error.
func (r *Registry) RegisterDefaults() {
	for _, action := range DefaultActions() {
		if err := r.RegisterAction(action); err != nil {
			panic(err)
		}
	}

	for _, rule := range DefaultContextRules() {
		if err := r.RegisterContextRule(rule); err != nil {
			panic(err)
		}
	}

	r.logger.Info("Loaded default catalog",
		"actions", len(r.Snapshot().actionOrder),
		"rules", len(r.Snapshot().ruleOrder))
}
