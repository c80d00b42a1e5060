package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/events"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/google/uuid"
)

type Edge struct {
	persistence persistence.Persistence
	notifier
}

// NewEdge creates a new edge service. publisher may be nil.
func NewEdge(logger *slog.Logger, p persistence.Persistence, publisher eventbus.EventPublisher) *Edge {
	return &Edge{
		persistence: p,
		notifier:    newNotifier(logger, publisher, "edge_service"),
	}
}

type CreateEdgeInput struct {
	ID       string
	Source   string
	Target   string
	Type     string
	Status   string
	Metadata models.EdgeMetadata
}

func (s *Edge) List(ctx context.Context, projectID string) ([]*models.Edge, error) {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return nil, err
	}

	return s.persistence.EdgeRepository().ListByProject(ctx, projectID)
}

func (s *Edge) Get(ctx context.Context, projectID, edgeID string) (*models.Edge, error) {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return nil, err
	}

	return s.persistence.EdgeRepository().Get(ctx, projectID, edgeID)
}

// Create links two existing nodes of the project.
func (s *Edge) Create(ctx context.Context, projectID string, input CreateEdgeInput) (*models.Edge, error) {
	const op = "CreateEdge"

	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.New().String()
	}

	edge := &models.Edge{
		ID:        id,
		ProjectID: projectID,
		Source:    input.Source,
		Target:    input.Target,
		Type:      models.EdgeType(strings.ToLower(input.Type)),
		Status:    models.EdgeStatus(strings.ToLower(input.Status)),
		Metadata:  input.Metadata,
		CreatedAt: s.timestamp(),
	}

	if edge.Status == "" {
		edge.Status = models.EdgeStatusActive
	}

	if err := validateStruct(op, edge); err != nil {
		return nil, err
	}

	if edge.Source == edge.Target {
		return nil, NewValidationError(op, "invalid_edge", "an edge cannot connect a node to itself", ErrInvalidEdge)
	}

	for _, endpoint := range []string{edge.Source, edge.Target} {
		if _, err := s.persistence.NodeRepository().Get(ctx, projectID, endpoint); err != nil {
			if persistence.IsNodeNotFound(err) {
				return nil, NewValidationError(op, "invalid_edge", fmt.Sprintf("node %s does not exist", endpoint), ErrInvalidEdge)
			}

			return nil, err
		}
	}

	if err := s.persistence.EdgeRepository().Save(ctx, edge); err != nil {
		return nil, fmt.Errorf("failed to save edge: %w", err)
	}

	s.publish(ctx, projectID, events.NewEdgeChanged(projectID, events.ReasonEdgeAdded, edge.ID))

	return edge, nil
}

func (s *Edge) Delete(ctx context.Context, projectID, edgeID string) error {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return err
	}

	if err := s.persistence.EdgeRepository().Delete(ctx, projectID, edgeID); err != nil {
		return err
	}

	s.publish(ctx, projectID, events.NewEdgeChanged(projectID, events.ReasonEdgeRemoved, edgeID))

	return nil
}
