// Package executor runs catalog actions against nodes and wraps the outcome
// in an execution result.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/vislzr/pkg/handlers"
	"github.com/dukex/vislzr/pkg/log"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/otelhelper"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Executor dispatches to handlers. It does not check the catalog or the
// node context; callers do that before calling Execute.
type Executor struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	handlers *handlers.Table
	now      func() time.Time
}

type Option func(*Executor)

// WithClock overrides the time source used for executed_at.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

func New(logger *slog.Logger, tracer trace.Tracer, table *handlers.Table, opts ...Option) *Executor {
	e := &Executor{
		logger:   logger.With("module", "executor"),
		tracer:   tracer,
		handlers: table,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Schema returns the params schema of the named handler.
func (e *Executor) Schema(handlerName string) (map[string]any, bool) {
	h, ok := e.handlers.Lookup(handlerName)
	if !ok {
		return nil, false
	}

	return h.Schema(), true
}

// Execute runs handlerName on node. The node's status and progress are only
// written when the handler succeeds.
func (e *Executor) Execute(
	ctx context.Context,
	actionID string,
	handlerName string,
	node *models.Node,
	params map[string]any,
) models.ExecutionResult {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "executor.execute",
		attribute.String(otelhelper.ActionIDKey, actionID),
		attribute.String(otelhelper.HandlerKey, handlerName),
		attribute.String(otelhelper.NodeIDKey, node.ID),
	)
	defer span.End()

	logger := e.logger.With("action_id", actionID, "node_id", node.ID, "handler", handlerName)
	ctx = log.WithLogger(ctx, logger)

	result := models.ExecutionResult{
		ActionID: actionID,
		NodeID:   node.ID,
	}

	payload, err := e.run(ctx, handlerName, node, params)
	result.ExecutedAt = e.now().UTC()

	if err != nil {
		result.Status = models.ExecutionStatusFailed
		result.ErrorMessage = err.Error()

		logger.InfoContext(ctx, "Action failed", "error", err)
		otelhelper.SetError(span, err)
		span.SetAttributes(attribute.String(otelhelper.StatusKey, string(result.Status)))

		return result
	}

	if payload == nil {
		payload = map[string]any{}
	}

	result.Status = models.ExecutionStatusSuccess
	result.Result = payload

	logger.InfoContext(ctx, "Action executed")
	span.SetAttributes(attribute.String(otelhelper.StatusKey, string(result.Status)))
	span.SetStatus(codes.Ok, "")

	return result
}

func (e *Executor) run(ctx context.Context, handlerName string, node *models.Node, params map[string]any) (map[string]any, error) {
	h, ok := e.handlers.Lookup(handlerName)
	if !ok {
		return nil, fmt.Errorf("Handler not found: %s", handlerName) //nolint:staticcheck // message is user facing
	}

	if params == nil {
		params = map[string]any{}
	}

	if v, ok := h.(handlers.ParamsValidator); ok && v.ValidatesParams() {
		if err := validateParams(h.Schema(), params); err != nil {
			return nil, err
		}
	}

	work := node.Clone()

	payload, err := invoke(ctx, h, work, params)
	if err != nil {
		return nil, err
	}

	node.Status = work.Status
	node.Progress = work.Progress

	return payload, nil
}

func invoke(ctx context.Context, h handlers.Handler, node *models.Node, params map[string]any) (payload map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return h.Handle(ctx, node, handlers.Params(params))
}

func validateParams(schema map[string]any, params map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(params))
	if err != nil {
		return fmt.Errorf("invalid params schema: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}

		return errors.New("invalid params: " + strings.Join(messages, "; "))
	}

	return nil
}
