package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// notifier publishes change events after a mutation has been committed. A
// failed publish is logged and never undoes the mutation.
type notifier struct {
	publisher eventbus.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func newNotifier(logger *slog.Logger, publisher eventbus.EventPublisher, module string) notifier {
	return notifier{
		publisher: publisher,
		logger:    logger.With("module", module),
		now:       time.Now,
	}
}

func (n notifier) publish(ctx context.Context, projectID string, event eventbus.Event) {
	if n.publisher == nil {
		return
	}

	if err := n.publisher.Publish(ctx, projectID, event); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish event",
			"project_id", projectID,
			"event_type", event.GetType(),
			"error", err,
		)
	}
}

func (n notifier) timestamp() time.Time {
	return n.now().UTC()
}

func invalid(op, message string) *ServiceError {
	return NewValidationError(op, "invalid_request", message, ErrInvalidRequest)
}

// validateStruct runs the struct tags of v and turns the first failure into
// a validation error.
func validateStruct(op string, v any) error {
	if err := validate.Struct(v); err != nil {
		return NewValidationError(op, "invalid_request", err.Error(), ErrInvalidRequest)
	}

	return nil
}
