package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/vislzr/pkg/models"
)

//nolint:staticcheck // message is user facing
var ErrProgressOutOfRange = errors.New("Progress must be between 0 and 100")

func markComplete() Handler {
	return Func{Fn: func(_ context.Context, node *models.Node, _ Params) (map[string]any, error) {
		oldStatus := node.Status

		node.Status = models.NodeStatusCompleted
		node.Progress = models.MaxProgress

		return map[string]any{
			"action":     "mark-complete",
			"message":    "Node marked as complete",
			"old_status": string(oldStatus),
			"new_status": string(node.Status),
		}, nil
	}}
}

func updateProgress() Handler {
	return Func{
		Fn: func(_ context.Context, node *models.Node, params Params) (map[string]any, error) {
			oldProgress := node.Progress

			progress, ok, err := params.Int("progress")
			if err != nil {
				return nil, err
			}

			if !ok {
				progress = oldProgress
			}

			if progress < 0 || progress > models.MaxProgress {
				return nil, ErrProgressOutOfRange
			}

			node.Progress = progress

			switch {
			case progress == models.MaxProgress:
				node.Status = models.NodeStatusCompleted
			case progress > 0:
				node.Status = models.NodeStatusInProgress
			}

			return map[string]any{
				"action":       "update-progress",
				"message":      "Progress updated",
				"old_progress": oldProgress,
				"new_progress": progress,
			}, nil
		},
		// Range is checked by the handler so the message stays stable.
		ParamsSchema: objectSchema(map[string]any{
			"progress": map[string]any{"type": "integer"},
		}),
		Strict: true,
	}
}

func pauseResume() Handler {
	return Func{Fn: func(_ context.Context, node *models.Node, _ Params) (map[string]any, error) {
		oldStatus := node.Status

		var message string

		switch oldStatus {
		case models.NodeStatusInProgress:
			node.Status = models.NodeStatusIdle
			message = "Node paused"
		case models.NodeStatusIdle:
			node.Status = models.NodeStatusInProgress
			message = "Node resumed"
		default:
			//nolint:staticcheck // message is user facing
			return nil, fmt.Errorf("Cannot pause/resume from status: %s", oldStatus)
		}

		return map[string]any{
			"action":     "pause-resume",
			"message":    message,
			"old_status": string(oldStatus),
			"new_status": string(node.Status),
		}, nil
	}}
}

func startTask() Handler {
	return Func{Fn: func(_ context.Context, node *models.Node, _ Params) (map[string]any, error) {
		oldStatus := node.Status
		node.Status = models.NodeStatusInProgress

		return map[string]any{
			"action":     "start-task",
			"message":    "Task started",
			"old_status": string(oldStatus),
			"new_status": string(node.Status),
		}, nil
	}}
}
