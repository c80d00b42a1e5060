package models

import (
	"slices"
	"time"
)

// ActionKind is the behavioural family of an action.
type ActionKind string

const (
	ActionKindView   ActionKind = "view"
	ActionKindCreate ActionKind = "create"
	ActionKindState  ActionKind = "state"
	ActionKindAI     ActionKind = "ai"
	ActionKindGroup  ActionKind = "group" // Reveals its members, see Action.Group
)

// ActionCategory is how an action is presented in menus.
type ActionCategory string

const (
	ActionCategoryFoundational ActionCategory = "foundational"
	ActionCategoryAI           ActionCategory = "ai"
	ActionCategoryGrouped      ActionCategory = "grouped"
)

const MaxActionPriority = 1000

// Action is a catalog entry. Once registered it is never mutated.
type Action struct {
	ID              string         `json:"id"               validate:"required"`
	Label           string         `json:"label"            validate:"required"`
	Icon            string         `json:"icon"`
	Kind            ActionKind     `json:"type"             validate:"required,oneof=view create state ai group"`
	Category        ActionCategory `json:"category"         validate:"required,oneof=foundational ai grouped"`
	Group           string         `json:"group,omitempty"`
	Handler         string         `json:"handler"          validate:"required"`
	RequiresContext bool           `json:"requires_context"`
	AIPowered       bool           `json:"ai_powered"`
	Priority        int            `json:"priority"         validate:"min=0,max=1000"`
}

// ActionView is the public projection of an action; the handler is hidden.
type ActionView struct {
	ID              string         `json:"id"`
	Label           string         `json:"label"`
	Icon            string         `json:"icon"`
	Kind            ActionKind     `json:"type"`
	Category        ActionCategory `json:"category"`
	Group           *string        `json:"group"`
	Priority        int            `json:"priority"`
	RequiresContext bool           `json:"requires_context"`
	AIPowered       bool           `json:"ai_powered"`
}

func (a Action) View() ActionView {
	view := ActionView{
		ID:              a.ID,
		Label:           a.Label,
		Icon:            a.Icon,
		Kind:            a.Kind,
		Category:        a.Category,
		Priority:        a.Priority,
		RequiresContext: a.RequiresContext,
		AIPowered:       a.AIPowered,
	}

	if a.Group != "" {
		group := a.Group
		view.Group = &group
	}

	return view
}

// Views projects a list of actions, keeping order.
func Views(actions []Action) []ActionView {
	views := make([]ActionView, 0, len(actions))
	for _, a := range actions {
		views = append(views, a.View())
	}

	return views
}

// ContextRule grants a set of actions to nodes of the given types and,
// optionally, statuses. Priority is bookkeeping only.
type ContextRule struct {
	ID           string   `json:"id"            validate:"required"`
	NodeTypes    []string `json:"node_types"    validate:"required,min=1"`
	NodeStatuses []string `json:"node_statuses"`
	Actions      []string `json:"actions"       validate:"required,min=1"`
	Priority     int      `json:"priority"`
}

// Clone returns a copy that shares no slices with r.
func (r ContextRule) Clone() ContextRule {
	r.NodeTypes = slices.Clone(r.NodeTypes)
	r.NodeStatuses = slices.Clone(r.NodeStatuses)
	r.Actions = slices.Clone(r.Actions)

	return r
}

// Matches reports whether the rule applies to a node of the given raw type
// and status. A rule without statuses matches every status, including none.
func (r ContextRule) Matches(nodeType, nodeStatus string) bool {
	if !slices.Contains(r.NodeTypes, nodeType) {
		return false
	}

	if len(r.NodeStatuses) == 0 {
		return true
	}

	return nodeStatus != "" && slices.Contains(r.NodeStatuses, nodeStatus)
}

// ExecutionStatus is the outcome of running an action.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
	ExecutionStatusPending ExecutionStatus = "pending"
)

// ExecutionResult is the uniform envelope returned for every execution.
// A failed result carries ErrorMessage, a successful one a non-nil Result.
type ExecutionResult struct {
	Status       ExecutionStatus `json:"status"`
	ActionID     string          `json:"action_id"`
	NodeID       string          `json:"node_id"`
	Result       map[string]any  `json:"result"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ExecutedAt   time.Time       `json:"executed_at"`
}

func (r ExecutionResult) Succeeded() bool {
	return r.Status == ExecutionStatusSuccess
}

// ActionHistory is one append-only record of an execution.
type ActionHistory struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	ExecutionResult
}

// DefaultHistoryLimit caps history listings when the caller gives no limit.
const DefaultHistoryLimit = 50
