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

type Node struct {
	persistence persistence.Persistence
	notifier
}

// NewNode creates a new node service. publisher may be nil.
func NewNode(logger *slog.Logger, p persistence.Persistence, publisher eventbus.EventPublisher) *Node {
	return &Node{
		persistence: p,
		notifier:    newNotifier(logger, publisher, "node_service"),
	}
}

type CreateNodeInput struct {
	ID       string
	Label    string
	Type     string
	Status   string
	Priority *int
	Progress int
	ParentID *string
	Tags     []string
	Metadata models.NodeMetadata
}

// UpdateNodeInput is a partial update; nil fields are left alone. An empty
// ParentID clears the parent.
type UpdateNodeInput struct {
	Label    *string
	Type     *string
	Status   *string
	Priority *int
	Progress *int
	ParentID *string
	Tags     []string
	Metadata *models.NodeMetadata
}

func (s *Node) List(ctx context.Context, projectID string) ([]*models.Node, error) {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return nil, err
	}

	return s.persistence.NodeRepository().ListByProject(ctx, projectID)
}

func (s *Node) Get(ctx context.Context, projectID, nodeID string) (*models.Node, error) {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return nil, err
	}

	return s.persistence.NodeRepository().Get(ctx, projectID, nodeID)
}

// Create stores a new node in the project. A taken id is a conflict.
func (s *Node) Create(ctx context.Context, projectID string, input CreateNodeInput) (*models.Node, error) {
	const op = "CreateNode"

	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.New().String()
	} else {
		_, err := s.persistence.NodeRepository().Get(ctx, projectID, id)
		if err == nil {
			return nil, persistence.NewNodeError("Create", projectID, id, persistence.ErrNodeAlreadyExists)
		}

		if !persistence.IsNodeNotFound(err) {
			return nil, fmt.Errorf("failed to check node: %w", err)
		}
	}

	now := s.timestamp()
	node := &models.Node{
		ID:        id,
		ProjectID: projectID,
		Label:     strings.TrimSpace(input.Label),
		Status:    models.NodeStatusIdle,
		Priority:  models.DefaultNodePriority,
		Progress:  input.Progress,
		Tags:      input.Tags,
		Metadata:  input.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	nodeType, err := parseType(op, input.Type)
	if err != nil {
		return nil, err
	}

	node.Type = nodeType

	if input.Status != "" {
		if node.Status, err = parseStatus(op, input.Status); err != nil {
			return nil, err
		}
	}

	if input.Priority != nil {
		node.Priority = *input.Priority
	}

	if node.Tags == nil {
		node.Tags = []string{}
	}

	if err := s.setParent(ctx, op, node, input.ParentID); err != nil {
		return nil, err
	}

	if err := validateStruct(op, node); err != nil {
		return nil, err
	}

	if err := s.persistence.NodeRepository().Save(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to save node: %w", err)
	}

	s.publish(ctx, projectID, events.NewNodeChanged(projectID, events.ReasonNodeAdded, node.ID))

	return node, nil
}

func (s *Node) Update(ctx context.Context, projectID, nodeID string, input UpdateNodeInput) (*models.Node, error) {
	const op = "UpdateNode"

	node, err := s.Get(ctx, projectID, nodeID)
	if err != nil {
		return nil, err
	}

	if input.Label != nil {
		node.Label = strings.TrimSpace(*input.Label)
	}

	if input.Type != nil {
		if node.Type, err = parseType(op, *input.Type); err != nil {
			return nil, err
		}
	}

	if input.Status != nil {
		if node.Status, err = parseStatus(op, *input.Status); err != nil {
			return nil, err
		}
	}

	if input.Priority != nil {
		node.Priority = *input.Priority
	}

	if input.Progress != nil {
		node.Progress = *input.Progress
	}

	if input.Tags != nil {
		node.Tags = input.Tags
	}

	if input.Metadata != nil {
		node.Metadata = *input.Metadata
	}

	if input.ParentID != nil {
		if err := s.setParent(ctx, op, node, input.ParentID); err != nil {
			return nil, err
		}
	}

	if err := validateStruct(op, node); err != nil {
		return nil, err
	}

	node.UpdatedAt = s.timestamp()

	if err := s.persistence.NodeRepository().Save(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to save node: %w", err)
	}

	s.publish(ctx, projectID, events.NewNodeChanged(projectID, events.ReasonNodeUpdated, node.ID))

	return node, nil
}

// Delete removes the node with its incident edges and history.
func (s *Node) Delete(ctx context.Context, projectID, nodeID string) error {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return err
	}

	if err := s.persistence.NodeRepository().Delete(ctx, projectID, nodeID); err != nil {
		return err
	}

	s.publish(ctx, projectID, events.NewNodeChanged(projectID, events.ReasonNodeRemoved, nodeID))

	return nil
}

func (s *Node) setParent(ctx context.Context, op string, node *models.Node, parentID *string) error {
	if parentID == nil || *parentID == "" {
		node.ParentID = nil

		return nil
	}

	if *parentID == node.ID {
		return invalid(op, "a node cannot be its own parent")
	}

	if _, err := s.persistence.NodeRepository().Get(ctx, node.ProjectID, *parentID); err != nil {
		if persistence.IsNodeNotFound(err) {
			return invalid(op, fmt.Sprintf("parent node %s does not exist", *parentID))
		}

		return err
	}

	parent := *parentID
	node.ParentID = &parent

	return nil
}

func parseType(op, raw string) (models.NodeType, error) {
	t := models.ParseNodeType(raw)
	if !t.Known() {
		return "", invalid(op, fmt.Sprintf("unknown node type %q", raw))
	}

	return t, nil
}

func parseStatus(op, raw string) (models.NodeStatus, error) {
	status := models.ParseNodeStatus(raw)
	if status != "" && !status.Known() {
		return "", invalid(op, fmt.Sprintf("unknown node status %q", raw))
	}

	return status, nil
}
