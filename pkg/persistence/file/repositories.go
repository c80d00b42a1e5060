package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
)

type projectRepository struct {
	fp *Persistence
}

func (r *projectRepository) List(_ context.Context) ([]*models.Project, error) {
	r.fp.mu.RLock()
	defer r.fp.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(r.fp.root, "projects"))
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]*models.Project, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}

		doc, err := r.fp.read(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}

		projects = append(projects, doc.Project)
	}

	slices.SortFunc(projects, func(a, b *models.Project) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return projects, nil
}

func (r *projectRepository) Get(_ context.Context, id string) (*models.Project, error) {
	var project *models.Project

	err := r.fp.view(id, func(doc *document) error {
		project = doc.Project

		return nil
	})

	return project, err
}

func (r *projectRepository) Save(_ context.Context, project *models.Project) error {
	r.fp.mu.Lock()
	defer r.fp.mu.Unlock()

	doc, err := r.fp.read(project.ID)
	if err != nil {
		if !persistence.IsProjectNotFound(err) {
			return err
		}

		doc = &document{}
	}

	doc.Project = project

	return r.fp.write(doc)
}

func (r *projectRepository) Delete(_ context.Context, id string) error {
	r.fp.mu.Lock()
	defer r.fp.mu.Unlock()

	err := os.Remove(r.fp.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return persistence.NewProjectError("Delete", id, persistence.ErrProjectNotFound)
	}

	return err
}

type nodeRepository struct {
	fp *Persistence
}

func (r *nodeRepository) ListByProject(_ context.Context, projectID string) ([]*models.Node, error) {
	var nodes []*models.Node

	err := r.fp.view(projectID, func(doc *document) error {
		nodes = doc.Nodes

		return nil
	})

	return nodes, err
}

func (r *nodeRepository) Get(_ context.Context, projectID, nodeID string) (*models.Node, error) {
	var node *models.Node

	err := r.fp.view(projectID, func(doc *document) error {
		idx := slices.IndexFunc(doc.Nodes, func(n *models.Node) bool { return n.ID == nodeID })
		if idx < 0 {
			return persistence.NewNodeError("Get", projectID, nodeID, persistence.ErrNodeNotFound)
		}

		node = doc.Nodes[idx]

		return nil
	})

	return node, err
}

func (r *nodeRepository) Save(_ context.Context, node *models.Node) error {
	return r.fp.update(node.ProjectID, func(doc *document) error {
		idx := slices.IndexFunc(doc.Nodes, func(n *models.Node) bool { return n.ID == node.ID })
		if idx < 0 {
			doc.Nodes = append(doc.Nodes, node)
		} else {
			doc.Nodes[idx] = node
		}

		return nil
	})
}

func (r *nodeRepository) Delete(_ context.Context, projectID, nodeID string) error {
	return r.fp.update(projectID, func(doc *document) error {
		before := len(doc.Nodes)

		doc.Nodes = slices.DeleteFunc(doc.Nodes, func(n *models.Node) bool { return n.ID == nodeID })
		if len(doc.Nodes) == before {
			return persistence.NewNodeError("Delete", projectID, nodeID, persistence.ErrNodeNotFound)
		}

		doc.Edges = slices.DeleteFunc(doc.Edges, func(e *models.Edge) bool { return e.Touches(nodeID) })
		doc.History = slices.DeleteFunc(doc.History, func(h *models.ActionHistory) bool { return h.NodeID == nodeID })

		return nil
	})
}

type edgeRepository struct {
	fp *Persistence
}

func (r *edgeRepository) ListByProject(_ context.Context, projectID string) ([]*models.Edge, error) {
	var edges []*models.Edge

	err := r.fp.view(projectID, func(doc *document) error {
		edges = doc.Edges

		return nil
	})

	return edges, err
}

func (r *edgeRepository) Get(_ context.Context, projectID, edgeID string) (*models.Edge, error) {
	var edge *models.Edge

	err := r.fp.view(projectID, func(doc *document) error {
		idx := slices.IndexFunc(doc.Edges, func(e *models.Edge) bool { return e.ID == edgeID })
		if idx < 0 {
			return persistence.NewEdgeError("Get", projectID, edgeID, persistence.ErrEdgeNotFound)
		}

		edge = doc.Edges[idx]

		return nil
	})

	return edge, err
}

func (r *edgeRepository) Save(_ context.Context, edge *models.Edge) error {
	return r.fp.update(edge.ProjectID, func(doc *document) error {
		for _, end := range []string{edge.Source, edge.Target} {
			if !slices.ContainsFunc(doc.Nodes, func(n *models.Node) bool { return n.ID == end }) {
				return persistence.NewNodeError("SaveEdge", edge.ProjectID, end, persistence.ErrNodeNotFound)
			}
		}

		idx := slices.IndexFunc(doc.Edges, func(e *models.Edge) bool { return e.ID == edge.ID })
		if idx < 0 {
			doc.Edges = append(doc.Edges, edge)
		} else {
			doc.Edges[idx] = edge
		}

		return nil
	})
}

func (r *edgeRepository) Delete(_ context.Context, projectID, edgeID string) error {
	return r.fp.update(projectID, func(doc *document) error {
		before := len(doc.Edges)

		doc.Edges = slices.DeleteFunc(doc.Edges, func(e *models.Edge) bool { return e.ID == edgeID })
		if len(doc.Edges) == before {
			return persistence.NewEdgeError("Delete", projectID, edgeID, persistence.ErrEdgeNotFound)
		}

		return nil
	})
}

type milestoneRepository struct {
	fp *Persistence
}

func (r *milestoneRepository) ListByProject(_ context.Context, projectID string) ([]*models.Milestone, error) {
	var milestones []*models.Milestone

	err := r.fp.view(projectID, func(doc *document) error {
		milestones = doc.Milestones

		return nil
	})

	return milestones, err
}

func (r *milestoneRepository) Get(_ context.Context, projectID, milestoneID string) (*models.Milestone, error) {
	var milestone *models.Milestone

	err := r.fp.view(projectID, func(doc *document) error {
		idx := slices.IndexFunc(doc.Milestones, func(m *models.Milestone) bool { return m.ID == milestoneID })
		if idx < 0 {
			return persistence.NewMilestoneError("Get", projectID, milestoneID, persistence.ErrMilestoneNotFound)
		}

		milestone = doc.Milestones[idx]

		return nil
	})

	return milestone, err
}

func (r *milestoneRepository) Save(_ context.Context, milestone *models.Milestone) error {
	return r.fp.update(milestone.ProjectID, func(doc *document) error {
		idx := slices.IndexFunc(doc.Milestones, func(m *models.Milestone) bool { return m.ID == milestone.ID })
		if idx < 0 {
			doc.Milestones = append(doc.Milestones, milestone)
		} else {
			doc.Milestones[idx] = milestone
		}

		return nil
	})
}

func (r *milestoneRepository) Delete(_ context.Context, projectID, milestoneID string) error {
	return r.fp.update(projectID, func(doc *document) error {
		before := len(doc.Milestones)

		doc.Milestones = slices.DeleteFunc(doc.Milestones, func(m *models.Milestone) bool { return m.ID == milestoneID })
		if len(doc.Milestones) == before {
			return persistence.NewMilestoneError("Delete", projectID, milestoneID, persistence.ErrMilestoneNotFound)
		}

		return nil
	})
}

type historyRepository struct {
	fp *Persistence
}

func (r *historyRepository) Append(_ context.Context, entry *models.ActionHistory) error {
	return r.fp.update(entry.ProjectID, func(doc *document) error {
		doc.History = append(doc.History, entry)

		return nil
	})
}

func (r *historyRepository) ListByNode(_ context.Context, projectID, nodeID string, limit int) ([]*models.ActionHistory, error) {
	limit = persistence.HistoryLimit(limit)

	var entries []*models.ActionHistory

	err := r.fp.view(projectID, func(doc *document) error {
		// Appends are chronological, so walking backwards yields newest first;
		// the stable sort only fixes up entries written with older timestamps.
		for i := len(doc.History) - 1; i >= 0; i-- {
			if doc.History[i].NodeID == nodeID {
				entries = append(entries, doc.History[i])
			}
		}

		slices.SortStableFunc(entries, func(a, b *models.ActionHistory) int {
			return b.ExecutedAt.Compare(a.ExecutedAt)
		})

		if len(entries) > limit {
			entries = entries[:limit]
		}

		return nil
	})

	return entries, err
}
