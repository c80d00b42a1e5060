package redis

import (
	"context"
	"errors"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
)

// Persistence serves graphs from base and history from Redis. Deletes and
// graph replacement keep the two in step.
type Persistence struct {
	persistence.Persistence

	history *HistoryStore
}

// WithHistory wraps base so that its history lives in store.
func WithHistory(base persistence.Persistence, store *HistoryStore) *Persistence {
	return &Persistence{Persistence: base, history: store}
}

func (p *Persistence) ActionHistoryRepository() persistence.ActionHistoryRepository {
	return p.history
}

func (p *Persistence) ProjectRepository() persistence.ProjectRepository {
	return &projectRepository{ProjectRepository: p.Persistence.ProjectRepository(), history: p.history}
}

func (p *Persistence) NodeRepository() persistence.NodeRepository {
	return &nodeRepository{NodeRepository: p.Persistence.NodeRepository(), history: p.history}
}

func (p *Persistence) ReplaceGraph(ctx context.Context, graph *models.Graph) error {
	if err := p.Persistence.ReplaceGraph(ctx, graph); err != nil {
		return err
	}

	keep := make([]string, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		keep = append(keep, n.ID)
	}

	return p.history.DeleteProject(ctx, graph.Project.ID, keep...)
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return errors.Join(p.Persistence.HealthCheck(ctx), p.history.HealthCheck(ctx))
}

func (p *Persistence) Close(ctx context.Context) error {
	return errors.Join(p.Persistence.Close(ctx), p.history.Close())
}

type projectRepository struct {
	persistence.ProjectRepository

	history *HistoryStore
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	if err := r.ProjectRepository.Delete(ctx, id); err != nil {
		return err
	}

	return r.history.DeleteProject(ctx, id)
}

type nodeRepository struct {
	persistence.NodeRepository

	history *HistoryStore
}

func (r *nodeRepository) Delete(ctx context.Context, projectID, nodeID string) error {
	if err := r.NodeRepository.Delete(ctx, projectID, nodeID); err != nil {
		return err
	}

	return r.history.DeleteNode(ctx, projectID, nodeID)
}
