// Package models defines the project graph entities and the action engine types.
package models

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// NodeType is the kind of a graph node. Values outside the known set are kept
// verbatim so records written by newer clients survive a round trip.
type NodeType string

const (
	NodeTypeRoot        NodeType = "ROOT"
	NodeTypeFolder      NodeType = "FOLDER"
	NodeTypeFile        NodeType = "FILE"
	NodeTypeTask        NodeType = "TASK"
	NodeTypeService     NodeType = "SERVICE"
	NodeTypeComponent   NodeType = "COMPONENT"
	NodeTypeDependency  NodeType = "DEPENDENCY"
	NodeTypeMilestone   NodeType = "MILESTONE"
	NodeTypeIdea        NodeType = "IDEA"
	NodeTypeNote        NodeType = "NOTE"
	NodeTypeSecurity    NodeType = "SECURITY"
	NodeTypeAgent       NodeType = "AGENT"
	NodeTypeAPIEndpoint NodeType = "API_ENDPOINT"
	NodeTypeDatabase    NodeType = "DATABASE"

	// NodeTypeUnknown stands in for any value outside the known set.
	NodeTypeUnknown NodeType = "UNKNOWN"
)

var knownNodeTypes = []NodeType{
	NodeTypeRoot, NodeTypeFolder, NodeTypeFile, NodeTypeTask, NodeTypeService,
	NodeTypeComponent, NodeTypeDependency, NodeTypeMilestone, NodeTypeIdea, NodeTypeNote,
	NodeTypeSecurity, NodeTypeAgent, NodeTypeAPIEndpoint, NodeTypeDatabase,
}

// NodeTypes returns the known node types.
func NodeTypes() []NodeType {
	return slices.Clone(knownNodeTypes)
}

// ParseNodeType normalizes s and returns the matching known type, or
// NodeTypeUnknown.
func ParseNodeType(s string) NodeType {
	t := NodeType(strings.ToUpper(strings.TrimSpace(s)))
	if t.Known() {
		return t
	}

	return NodeTypeUnknown
}

// Known reports whether t is one of the known node types.
func (t NodeType) Known() bool {
	return slices.Contains(knownNodeTypes, t)
}

// OrUnknown collapses values outside the known set to NodeTypeUnknown.
func (t NodeType) OrUnknown() NodeType {
	if t.Known() {
		return t
	}

	return NodeTypeUnknown
}

// NodeStatus is the lifecycle state of a graph node. The empty status means
// "no status".
type NodeStatus string

const (
	NodeStatusIdle       NodeStatus = "IDLE"
	NodeStatusPlanned    NodeStatus = "PLANNED"
	NodeStatusInProgress NodeStatus = "IN_PROGRESS"
	NodeStatusAtRisk     NodeStatus = "AT_RISK"
	NodeStatusOverdue    NodeStatus = "OVERDUE"
	NodeStatusBlocked    NodeStatus = "BLOCKED"
	NodeStatusCompleted  NodeStatus = "COMPLETED"
	NodeStatusRunning    NodeStatus = "RUNNING"
	NodeStatusError      NodeStatus = "ERROR"
	NodeStatusStopped    NodeStatus = "STOPPED"

	NodeStatusUnknown NodeStatus = "UNKNOWN"
)

var knownNodeStatuses = []NodeStatus{
	NodeStatusIdle, NodeStatusPlanned, NodeStatusInProgress, NodeStatusAtRisk, NodeStatusOverdue,
	NodeStatusBlocked, NodeStatusCompleted, NodeStatusRunning, NodeStatusError, NodeStatusStopped,
}

// NodeStatuses returns the known node statuses.
func NodeStatuses() []NodeStatus {
	return slices.Clone(knownNodeStatuses)
}

// ParseNodeStatus normalizes s and returns the matching known status,
// NodeStatusUnknown, or the empty status when s is blank.
func ParseNodeStatus(s string) NodeStatus {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}

	status := NodeStatus(strings.ToUpper(trimmed))
	if status.Known() {
		return status
	}

	return NodeStatusUnknown
}

func (s NodeStatus) Known() bool {
	return slices.Contains(knownNodeStatuses, s)
}

func (s NodeStatus) OrUnknown() NodeStatus {
	if s == "" || s.Known() {
		return s
	}

	return NodeStatusUnknown
}

const (
	DefaultNodePriority = 2
	MinNodePriority     = 1
	MaxNodePriority     = 4
	MaxProgress         = 100
)

// Node is a vertex of a project graph.
type Node struct {
	ID        string       `json:"id"                  validate:"required"`
	ProjectID string       `json:"project_id"`
	Label     string       `json:"label"               validate:"required"`
	Type      NodeType     `json:"type"                validate:"required"`
	Status    NodeStatus   `json:"status"`
	Priority  int          `json:"priority"            validate:"min=1,max=4"`
	Progress  int          `json:"progress"            validate:"min=0,max=100"`
	ParentID  *string      `json:"parent_id,omitempty"`
	Tags      []string     `json:"tags"`
	Metadata  NodeMetadata `json:"metadata"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	clone := *n
	clone.Tags = slices.Clone(n.Tags)
	clone.Metadata = n.Metadata.Clone()

	if n.ParentID != nil {
		parentID := *n.ParentID
		clone.ParentID = &parentID
	}

	return &clone
}

// NodeMetadata is the attribute bag of a node. Known keys are typed; anything
// else is preserved in Extra.
type NodeMetadata struct {
	DueDate        string         `json:"due_date,omitempty"`
	Assignee       string         `json:"assignee,omitempty"`
	EstimatedHours *int           `json:"estimated_hours,omitempty"`
	ActualHours    *int           `json:"actual_hours,omitempty"`
	Code           string         `json:"code,omitempty"`
	Description    string         `json:"description,omitempty"`
	Links          []string       `json:"links,omitempty"`
	DependsOn      []string       `json:"dependencies,omitempty"`
	SchemaDef      map[string]any `json:"schema,omitempty"`
	Extra          map[string]any `json:"-"`
}

var nodeMetadataKeys = []string{
	"due_date", "assignee", "estimated_hours", "actual_hours", "code",
	"description", "links", "dependencies", "schema",
}

type nodeMetadataAlias NodeMetadata

func (m NodeMetadata) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(nodeMetadataAlias(m))
	if err != nil {
		return nil, err
	}

	if len(m.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]any, len(m.Extra)+len(nodeMetadataKeys))
	for k, v := range m.Extra {
		merged[k] = v
	}

	var knownFields map[string]any
	if err := json.Unmarshal(known, &knownFields); err != nil {
		return nil, err
	}

	for k, v := range knownFields {
		merged[k] = v
	}

	return json.Marshal(merged)
}

func (m *NodeMetadata) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = NodeMetadata{}

		return nil
	}

	var alias nodeMetadataAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, key := range nodeMetadataKeys {
		delete(raw, key)
	}

	*m = NodeMetadata(alias)
	if len(raw) > 0 {
		m.Extra = raw
	}

	return nil
}

// Clone returns a copy that shares no slices or maps with m.
func (m NodeMetadata) Clone() NodeMetadata {
	clone := m
	clone.Links = slices.Clone(m.Links)
	clone.DependsOn = slices.Clone(m.DependsOn)
	clone.SchemaDef = cloneMap(m.SchemaDef)
	clone.Extra = cloneMap(m.Extra)

	if m.EstimatedHours != nil {
		v := *m.EstimatedHours
		clone.EstimatedHours = &v
	}

	if m.ActualHours != nil {
		v := *m.ActualHours
		clone.ActualHours = &v
	}

	return clone
}

// Dependencies returns the declared dependency ids, never nil.
func (m NodeMetadata) Dependencies() []string {
	if m.DependsOn == nil {
		return []string{}
	}

	return slices.Clone(m.DependsOn)
}

// Schema returns the embedded schema description, never nil.
func (m NodeMetadata) Schema() map[string]any {
	if m.SchemaDef == nil {
		return map[string]any{}
	}

	return cloneMap(m.SchemaDef)
}

// DueAt parses DueDate. Both plain dates and RFC 3339 timestamps are accepted.
func (m NodeMetadata) DueAt() (time.Time, bool) {
	if m.DueDate == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.DateOnly, m.DueDate); err == nil {
		return t, true
	}

	if t, err := time.Parse(time.RFC3339, m.DueDate); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// AsMap renders the metadata the way it is serialized.
func (m NodeMetadata) AsMap() map[string]any {
	data, err := json.Marshal(m)
	if err != nil {
		return map[string]any{}
	}

	out := map[string]any{}
	_ = json.Unmarshal(data, &out)

	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	data, err := json.Marshal(in)
	if err != nil {
		out := make(map[string]any, len(in))
		for k, v := range in {
			out[k] = v
		}

		return out
	}

	out := make(map[string]any, len(in))
	_ = json.Unmarshal(data, &out)

	return out
}
