package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/events"
	"github.com/dukex/vislzr/pkg/executor"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/otelhelper"
	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/dukex/vislzr/pkg/registry"
	"github.com/dukex/vislzr/pkg/resolver"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Action exposes the catalog for nodes and runs actions against them. It is
// the only caller of the executor and owns the catalog and context checks.
type Action struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	resolver    *resolver.Resolver
	executor    *executor.Executor
	tracer      trace.Tracer
	notifier
}

func NewAction(
	logger *slog.Logger,
	tracer trace.Tracer,
	p persistence.Persistence,
	reg *registry.Registry,
	exec *executor.Executor,
	publisher eventbus.EventPublisher,
) *Action {
	return &Action{
		persistence: p,
		registry:    reg,
		resolver:    resolver.New(reg),
		executor:    exec,
		tracer:      tracer,
		notifier:    newNotifier(logger, publisher, "action_service"),
	}
}

// Catalog lists every registered action in registration order.
func (s *Action) Catalog() []models.ActionView {
	return models.Views(s.registry.Actions())
}

// Schema returns the params schema of the handler behind actionID.
func (s *Action) Schema(actionID string) (map[string]any, error) {
	action, ok := s.registry.Action(actionID)
	if !ok {
		return nil, &ServiceError{Op: "ActionSchema", Code: "action_not_found", Message: "Action not found", Err: ErrActionNotFound}
	}

	schema, ok := s.executor.Schema(action.Handler)
	if !ok {
		return nil, &ServiceError{
			Op:      "ActionSchema",
			Code:    "handler_not_found",
			Message: "Handler not found: " + action.Handler,
			Err:     ErrActionNotFound,
		}
	}

	return schema, nil
}

// ListForNode returns the actions available to the node, highest precedence first.
func (s *Action) ListForNode(ctx context.Context, projectID, nodeID string) ([]models.ActionView, error) {
	node, err := s.node(ctx, projectID, nodeID)
	if err != nil {
		return nil, err
	}

	return models.Views(s.resolver.DetectActions(node)), nil
}

// ExpandGroup returns the members of groupID available to the node. An
// unknown group yields an empty list.
func (s *Action) ExpandGroup(ctx context.Context, projectID, nodeID, groupID string) ([]models.ActionView, error) {
	node, err := s.node(ctx, projectID, nodeID)
	if err != nil {
		return nil, err
	}

	return models.Views(s.resolver.ExpandGroupForNode(groupID, node)), nil
}

func (s *Action) History(ctx context.Context, projectID, nodeID string, limit int) ([]*models.ActionHistory, error) {
	if _, err := s.node(ctx, projectID, nodeID); err != nil {
		return nil, err
	}

	entries, err := s.persistence.ActionHistoryRepository().ListByNode(ctx, projectID, nodeID, persistence.HistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list action history: %w", err)
	}

	if entries == nil {
		entries = []*models.ActionHistory{}
	}

	return entries, nil
}

// Execute runs actionID on the node. Lookup and context failures are
// returned as errors; a handler failure is a failed result with a nil
// error. Every execution is recorded in the node history.
func (s *Action) Execute(ctx context.Context, projectID, nodeID, actionID string, params map[string]any) (models.ExecutionResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "action.execute",
		attribute.String(otelhelper.ProjectIDKey, projectID),
		attribute.String(otelhelper.NodeIDKey, nodeID),
		attribute.String(otelhelper.ActionIDKey, actionID),
	)
	defer span.End()

	node, err := s.node(ctx, projectID, nodeID)
	if err != nil {
		otelhelper.SetError(span, err)

		return models.ExecutionResult{}, err
	}

	span.SetAttributes(attribute.String(otelhelper.NodeTypeKey, string(node.Type)))

	action, ok := s.registry.Action(actionID)
	if !ok {
		err := &ServiceError{Op: "ExecuteAction", Code: "action_not_found", Message: "Action not found", Err: ErrActionNotFound}
		otelhelper.SetError(span, err)

		return models.ExecutionResult{}, err
	}

	if !s.resolver.ValidateForNode(actionID, node) {
		err := &ServiceError{
			Op:      "ExecuteAction",
			Code:    "action_not_available",
			Message: "Action not available for this node",
			Err:     ErrActionNotAvailable,
		}
		otelhelper.SetError(span, err)

		return models.ExecutionResult{}, err
	}

	result := s.executor.Execute(ctx, action.ID, action.Handler, node, params)

	if result.Succeeded() {
		node.UpdatedAt = s.timestamp()

		if err := s.persistence.NodeRepository().Save(ctx, node); err != nil {
			otelhelper.SetError(span, err)

			return models.ExecutionResult{}, fmt.Errorf("failed to save node: %w", err)
		}
	}

	entry := &models.ActionHistory{
		ID:              uuid.New().String(),
		ProjectID:       projectID,
		ExecutionResult: result,
	}

	if err := s.persistence.ActionHistoryRepository().Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record action history",
			"project_id", projectID,
			"node_id", nodeID,
			"action_id", actionID,
			"error", err,
		)
	}

	span.SetAttributes(attribute.String(otelhelper.StatusKey, string(result.Status)))

	s.publish(ctx, projectID, events.NewActionExecuted(projectID, result))

	if result.Succeeded() {
		s.publish(ctx, projectID, events.NewNodeChanged(projectID, events.ReasonActionExecuted, nodeID))
	}

	return result, nil
}

func (s *Action) node(ctx context.Context, projectID, nodeID string) (*models.Node, error) {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return nil, err
	}

	return s.persistence.NodeRepository().Get(ctx, projectID, nodeID)
}
