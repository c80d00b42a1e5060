// Package events defines the notifications emitted when a project graph changes.
package events

import (
	"time"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every vislzr event.
const Topic = "vislzr.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	GraphChangedEvent   EventType = "graph.changed"
	ActionExecutedEvent EventType = "action.executed"
)

// Reason says what kind of mutation produced a GraphChanged event.
type Reason string

const (
	ReasonNodeAdded        Reason = "node_added"
	ReasonNodeUpdated      Reason = "node_updated"
	ReasonNodeRemoved      Reason = "node_removed"
	ReasonEdgeAdded        Reason = "edge_added"
	ReasonEdgeRemoved      Reason = "edge_removed"
	ReasonMilestoneAdded   Reason = "milestone_added"
	ReasonMilestoneUpdated Reason = "milestone_updated"
	ReasonMilestoneDeleted Reason = "milestone_deleted"
	ReasonReplace          Reason = "replace"
	ReasonActionExecuted   Reason = "action_executed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ProjectID string    `json:"project_id"`
}

func newBase(eventType EventType, projectID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ProjectID: projectID,
	}
}

// GraphChanged is published after every committed mutation of a project.
type GraphChanged struct {
	BaseEvent

	Reason      Reason `json:"reason"`
	NodeID      string `json:"node_id,omitempty"`
	EdgeID      string `json:"edge_id,omitempty"`
	MilestoneID string `json:"milestone_id,omitempty"`
}

func (g GraphChanged) GetType() EventType {
	return GraphChangedEvent
}

func NewNodeChanged(projectID string, reason Reason, nodeID string) GraphChanged {
	return GraphChanged{BaseEvent: newBase(GraphChangedEvent, projectID), Reason: reason, NodeID: nodeID}
}

func NewEdgeChanged(projectID string, reason Reason, edgeID string) GraphChanged {
	return GraphChanged{BaseEvent: newBase(GraphChangedEvent, projectID), Reason: reason, EdgeID: edgeID}
}

func NewMilestoneChanged(projectID string, reason Reason, milestoneID string) GraphChanged {
	return GraphChanged{BaseEvent: newBase(GraphChangedEvent, projectID), Reason: reason, MilestoneID: milestoneID}
}

func NewGraphReplaced(projectID string) GraphChanged {
	return GraphChanged{BaseEvent: newBase(GraphChangedEvent, projectID), Reason: ReasonReplace}
}

// ActionExecuted reports one execution, successful or not.
type ActionExecuted struct {
	BaseEvent

	Result models.ExecutionResult `json:"result"`
}

func (a ActionExecuted) GetType() EventType {
	return ActionExecutedEvent
}

func NewActionExecuted(projectID string, result models.ExecutionResult) ActionExecuted {
	return ActionExecuted{BaseEvent: newBase(ActionExecutedEvent, projectID), Result: result}
}
