// Package handlers implements the logic bound to catalog actions.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/dukex/vislzr/pkg/models"
)

// ID is the stable key an action uses to name its handler.
type ID string

const (
	ViewTimeline     ID = "viewTimelineHandler"
	ViewStatusLog    ID = "viewStatusLogHandler"
	ViewDependencies ID = "viewDependenciesHandler"
	ViewDetails      ID = "viewDetailsHandler"
	ViewSchema       ID = "viewSchemaHandler"

	AddTask      ID = "addTaskHandler"
	AddNote      ID = "addNoteHandler"
	AddChild     ID = "addChildHandler"
	AddIdea      ID = "addIdeaHandler"
	AddMilestone ID = "addMilestoneHandler"

	MarkComplete   ID = "markCompleteHandler"
	UpdateProgress ID = "updateProgressHandler"
	PauseResume    ID = "pauseResumeHandler"
	StartTask      ID = "startTaskHandler"

	SecurityScan      ID = "securityScanHandler"
	ComplianceScan    ID = "complianceScanHandler"
	CheckUpdates      ID = "checkUpdatesHandler"
	DependencyAudit   ID = "dependencyAuditHandler"
	OptimizationScan  ID = "optimizationScanHandler"
	ArchitecturalScan ID = "architecturalScanHandler"
	PerformanceScan   ID = "performanceScanHandler"
	CodeQualityScan   ID = "codeQualityScanHandler"
	ProposeFeatures   ID = "proposeFeaturesHandler"
	AskAI             ID = "askAIHandler"
	RefactorCode      ID = "refactorCodeHandler"
	GenerateDocs      ID = "generateDocsHandler"
	GenerateTests     ID = "generateTestsHandler"
	UnblockAI         ID = "unblockAIHandler"
	DebugAI           ID = "debugAIHandler"
	AlternativesAI    ID = "alternativesAIHandler"

	ExpandGroup ID = "expandGroupHandler"
)

// Params are the caller-supplied arguments of an execution.
type Params map[string]any

// Int reads an integral number. JSON numbers arrive as float64; fractional
// values are rejected.
func (p Params) Int(key string) (int, bool, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return 0, false, nil
	}

	switch v := raw.(type) {
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, true, fmt.Errorf("%s must be an integer", key)
		}

		return int(v), true, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, true, fmt.Errorf("%s must be an integer", key)
		}

		return int(n), true, nil
	default:
		return 0, true, fmt.Errorf("%s must be an integer", key)
	}
}

// String reads a string value, returning "" when absent.
func (p Params) String(key string) string {
	s, _ := p[key].(string)

	return s
}

// Clone returns a shallow copy that is never nil.
func (p Params) Clone() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// Handler runs an action against a node. Implementations validate before
// mutating, and only ever write the node's status and progress.
type Handler interface {
	Handle(ctx context.Context, node *models.Node, params Params) (map[string]any, error)
	// Schema describes the params the handler reads. It is advisory unless the
	// handler also implements ParamsValidator.
	Schema() map[string]any
}

// ParamsValidator is implemented by handlers whose params must satisfy Schema
// before they run.
type ParamsValidator interface {
	ValidatesParams() bool
}

// Func adapts a plain function to Handler.
type Func struct {
	Fn           func(ctx context.Context, node *models.Node, params Params) (map[string]any, error)
	ParamsSchema map[string]any
	// Strict rejects params that do not satisfy ParamsSchema.
	Strict bool
}

func (f Func) Handle(ctx context.Context, node *models.Node, params Params) (map[string]any, error) {
	return f.Fn(ctx, node, params)
}

func (f Func) ValidatesParams() bool {
	return f.Strict
}

func (f Func) Schema() map[string]any {
	if f.ParamsSchema == nil {
		return objectSchema(nil)
	}

	return f.ParamsSchema
}

// Table maps handler ids to implementations.
type Table struct {
	mu       sync.RWMutex
	handlers map[ID]Handler
}

func NewTable() *Table {
	return &Table{handlers: make(map[ID]Handler)}
}

// Register binds h to id, replacing any previous binding.
func (t *Table) Register(id ID, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.handlers[id] = h
}

func (t *Table) Lookup(name string) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	h, ok := t.handlers[ID(name)]

	return h, ok
}

// IDs lists the bound handler ids, sorted.
func (t *Table) IDs() []ID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]ID, 0, len(t.handlers))
	for id := range t.handlers {
		out = append(out, id)
	}

	slices.Sort(out)

	return out
}

// Defaults returns a table with every built-in handler. AI actions other than
// the five placeholders are cataloged but have no handler yet.
func Defaults() *Table {
	t := NewTable()

	t.Register(ViewTimeline, viewTimeline())
	t.Register(ViewStatusLog, viewStatusLog())
	t.Register(ViewDependencies, viewDependencies())
	t.Register(ViewDetails, viewDetails())
	t.Register(ViewSchema, viewSchema())

	t.Register(AddTask, addTask())
	t.Register(AddNote, addNote())
	t.Register(AddChild, addChild())
	t.Register(AddIdea, addIdea())
	t.Register(AddMilestone, addMilestone())

	t.Register(MarkComplete, markComplete())
	t.Register(UpdateProgress, updateProgress())
	t.Register(PauseResume, pauseResume())
	t.Register(StartTask, startTask())

	t.Register(SecurityScan, securityScan())
	t.Register(AskAI, askAI())
	t.Register(DebugAI, debugAI())
	t.Register(UnblockAI, unblockAI())
	t.Register(AlternativesAI, alternativesAI())

	t.Register(ExpandGroup, expandGroup())

	return t
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}
