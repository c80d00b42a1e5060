// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/google/uuid"
)

var fixedCreatedAt = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

// CreateTestProject creates a test Project with default values that can be overridden.
func CreateTestProject(overrides ...func(*models.Project)) *models.Project {
	project := &models.Project{
		ID:          uuid.New().String(),
		Name:        "Test Project",
		Description: "Project used in tests",
		CreatedAt:   fixedCreatedAt,
		UpdatedAt:   fixedCreatedAt,
	}

	for _, override := range overrides {
		override(project)
	}

	return project
}

// CreateTestNode creates an idle TASK node in projectID.
func CreateTestNode(projectID string, overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Label:     "Test Node",
		Type:      models.NodeTypeTask,
		Status:    models.NodeStatusIdle,
		Priority:  models.DefaultNodePriority,
		Progress:  0,
		Tags:      []string{},
		CreatedAt: fixedCreatedAt,
		UpdatedAt: fixedCreatedAt,
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithType sets the node type.
func WithType(nodeType models.NodeType) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
	}
}

// WithStatus sets the node status.
func WithStatus(status models.NodeStatus) func(*models.Node) {
	return func(n *models.Node) {
		n.Status = status
	}
}

// WithProgress sets the node progress.
func WithProgress(progress int) func(*models.Node) {
	return func(n *models.Node) {
		n.Progress = progress
	}
}

// WithDueDate sets metadata.due_date.
func WithDueDate(date string) func(*models.Node) {
	return func(n *models.Node) {
		n.Metadata.DueDate = date
	}
}

// CreateTestEdge creates a dependency edge from source to target.
func CreateTestEdge(projectID, source, target string, overrides ...func(*models.Edge)) *models.Edge {
	edge := &models.Edge{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Source:    source,
		Target:    target,
		Type:      models.EdgeTypeDependency,
		Status:    models.EdgeStatusActive,
		CreatedAt: fixedCreatedAt,
	}

	for _, override := range overrides {
		override(edge)
	}

	return edge
}

// CreateTestMilestone creates a planned milestone.
func CreateTestMilestone(projectID string, overrides ...func(*models.Milestone)) *models.Milestone {
	milestone := &models.Milestone{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Title:       "Beta",
		Date:        "2026-06-01",
		Status:      models.MilestoneStatusPlanned,
		LinkedNodes: []string{},
		CreatedAt:   fixedCreatedAt,
		UpdatedAt:   fixedCreatedAt,
	}

	for _, override := range overrides {
		override(milestone)
	}

	return milestone
}

// CreateTestHistory creates a successful history entry for nodeID.
func CreateTestHistory(projectID, nodeID string, executedAt time.Time) *models.ActionHistory {
	return &models.ActionHistory{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		ExecutionResult: models.ExecutionResult{
			Status:     models.ExecutionStatusSuccess,
			ActionID:   "view-details",
			NodeID:     nodeID,
			Result:     map[string]any{"action": "view-details"},
			ExecutedAt: executedAt.UTC(),
		},
	}
}
