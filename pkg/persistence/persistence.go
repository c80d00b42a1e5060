// Package persistence provides the storage abstraction for project graphs and
// action history.
package persistence

import (
	"context"

	"github.com/dukex/vislzr/pkg/models"
)

type Persistence interface {
	ProjectRepository() ProjectRepository
	NodeRepository() NodeRepository
	EdgeRepository() EdgeRepository
	MilestoneRepository() MilestoneRepository
	ActionHistoryRepository() ActionHistoryRepository

	// ReplaceGraph swaps the nodes, edges and milestones of graph.Project in
	// one step. The project itself is upserted.
	ReplaceGraph(ctx context.Context, graph *models.Graph) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

type ProjectRepository interface {
	List(ctx context.Context) ([]*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	// Save inserts or updates the project.
	Save(ctx context.Context, project *models.Project) error
	// Delete removes the project with everything it owns.
	Delete(ctx context.Context, id string) error
}

type NodeRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]*models.Node, error)
	Get(ctx context.Context, projectID, nodeID string) (*models.Node, error)
	Save(ctx context.Context, node *models.Node) error
	// Delete removes the node, its incident edges and its history.
	Delete(ctx context.Context, projectID, nodeID string) error
}

type EdgeRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]*models.Edge, error)
	Get(ctx context.Context, projectID, edgeID string) (*models.Edge, error)
	Save(ctx context.Context, edge *models.Edge) error
	Delete(ctx context.Context, projectID, edgeID string) error
}

type MilestoneRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]*models.Milestone, error)
	Get(ctx context.Context, projectID, milestoneID string) (*models.Milestone, error)
	Save(ctx context.Context, milestone *models.Milestone) error
	Delete(ctx context.Context, projectID, milestoneID string) error
}

// ActionHistoryRepository is append-only.
type ActionHistoryRepository interface {
	Append(ctx context.Context, entry *models.ActionHistory) error
	// ListByNode returns the most recent entries first. A limit <= 0 means
	// models.DefaultHistoryLimit.
	ListByNode(ctx context.Context, projectID, nodeID string, limit int) ([]*models.ActionHistory, error)
}

// HistoryLimit normalizes a caller supplied history limit.
func HistoryLimit(limit int) int {
	if limit <= 0 {
		return models.DefaultHistoryLimit
	}

	return limit
}
