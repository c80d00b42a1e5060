package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/events"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/google/uuid"
)

type Graph struct {
	persistence persistence.Persistence
	notifier
}

// NewGraph creates a new graph service. publisher may be nil.
func NewGraph(logger *slog.Logger, p persistence.Persistence, publisher eventbus.EventPublisher) *Graph {
	return &Graph{
		persistence: p,
		notifier:    newNotifier(logger, publisher, "graph_service"),
	}
}

// Get loads the project with all of its nodes, edges and milestones.
func (s *Graph) Get(ctx context.Context, projectID string) (*models.Graph, error) {
	project, err := s.persistence.ProjectRepository().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	nodes, err := s.persistence.NodeRepository().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	edges, err := s.persistence.EdgeRepository().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}

	milestones, err := s.persistence.MilestoneRepository().ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}

	return &models.Graph{Project: project, Nodes: nodes, Edges: edges, Milestones: milestones}, nil
}

// Replace swaps the whole graph of projectID. The project in the payload is
// upserted and must carry the same id.
func (s *Graph) Replace(ctx context.Context, projectID string, graph *models.Graph) (*models.Graph, error) {
	const op = "ReplaceGraph"

	if graph == nil || graph.Project == nil {
		return nil, invalid(op, "graph project is required")
	}

	if graph.Project.ID != projectID {
		return nil, NewValidationError(op, "project_id_mismatch", "Project id mismatch", ErrProjectIDMismatch)
	}

	if err := s.normalize(ctx, op, graph); err != nil {
		return nil, err
	}

	if err := s.persistence.ReplaceGraph(ctx, graph); err != nil {
		return nil, fmt.Errorf("failed to replace graph: %w", err)
	}

	s.logger.InfoContext(ctx, "Graph replaced",
		"project_id", projectID,
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges),
		"milestones", len(graph.Milestones),
	)

	s.publish(ctx, projectID, events.NewGraphReplaced(projectID))

	return graph, nil
}

// normalize stamps ids and timestamps and validates the payload as a whole.
func (s *Graph) normalize(ctx context.Context, op string, graph *models.Graph) error {
	now := s.timestamp()
	project := graph.Project

	existing, err := s.persistence.ProjectRepository().Get(ctx, project.ID)

	switch {
	case err == nil:
		project.CreatedAt = existing.CreatedAt
	case persistence.IsProjectNotFound(err):
		project.CreatedAt = now
	default:
		return err
	}

	project.UpdatedAt = now

	if err := validateStruct(op, project); err != nil {
		return err
	}

	if graph.Nodes == nil {
		graph.Nodes = []*models.Node{}
	}

	if graph.Edges == nil {
		graph.Edges = []*models.Edge{}
	}

	if graph.Milestones == nil {
		graph.Milestones = []*models.Milestone{}
	}

	nodes := make(map[string]struct{}, len(graph.Nodes))

	for _, n := range graph.Nodes {
		if _, dup := nodes[n.ID]; dup {
			return invalid(op, fmt.Sprintf("duplicate node id %q", n.ID))
		}

		nodes[n.ID] = struct{}{}

		if err := normalizeNode(op, n, project.ID, now); err != nil {
			return err
		}
	}

	for _, e := range graph.Edges {
		if _, ok := nodes[e.Source]; !ok {
			return NewValidationError(op, "invalid_edge", fmt.Sprintf("edge source %s is not in the graph", e.Source), ErrInvalidEdge)
		}

		if _, ok := nodes[e.Target]; !ok {
			return NewValidationError(op, "invalid_edge", fmt.Sprintf("edge target %s is not in the graph", e.Target), ErrInvalidEdge)
		}

		if e.ID == "" {
			e.ID = uuid.New().String()
		}

		e.ProjectID = project.ID
		e.Type = models.EdgeType(strings.ToLower(string(e.Type)))

		if e.Status == "" {
			e.Status = models.EdgeStatusActive
		}

		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}

		if err := validateStruct(op, e); err != nil {
			return err
		}
	}

	for _, m := range graph.Milestones {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}

		m.ProjectID = project.ID

		if m.Status == "" {
			m.Status = models.MilestoneStatusPlanned
		}

		if m.LinkedNodes == nil {
			m.LinkedNodes = []string{}
		}

		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}

		m.UpdatedAt = now

		if err := validateStruct(op, m); err != nil {
			return err
		}
	}

	return nil
}

func normalizeNode(op string, n *models.Node, projectID string, now time.Time) error {
	var err error

	n.ProjectID = projectID

	if n.Type, err = parseType(op, string(n.Type)); err != nil {
		return err
	}

	if n.Status, err = parseStatus(op, string(n.Status)); err != nil {
		return err
	}

	if n.Status == "" {
		n.Status = models.NodeStatusIdle
	}

	if n.Priority == 0 {
		n.Priority = models.DefaultNodePriority
	}

	if n.Tags == nil {
		n.Tags = []string{}
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}

	n.UpdatedAt = now

	return validateStruct(op, n)
}
