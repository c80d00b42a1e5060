package handlers

import (
	"context"

	"github.com/dukex/vislzr/pkg/models"
)

// Creation is left to the caller; these handlers only echo the request.

var creationProperties = map[string]any{
	"label":       map[string]any{"type": "string"},
	"title":       map[string]any{"type": "string"},
	"description": map[string]any{"type": "string"},
	"priority":    map[string]any{"type": "integer", "minimum": 1, "maximum": 4},
}

func addTask() Handler {
	return Func{
		Fn: func(_ context.Context, node *models.Node, params Params) (map[string]any, error) {
			return map[string]any{
				"action":         "add-task",
				"message":        "Task creation requested",
				"parent_node_id": node.ID,
				"task_params":    params.Clone(),
			}, nil
		},
		ParamsSchema: objectSchema(creationProperties),
	}
}

func addNote() Handler {
	return Func{
		Fn: func(_ context.Context, node *models.Node, params Params) (map[string]any, error) {
			return map[string]any{
				"action":         "add-note",
				"message":        "Note creation requested",
				"parent_node_id": node.ID,
				"note_content":   params.String("content"),
			}, nil
		},
		ParamsSchema: objectSchema(map[string]any{
			"content": map[string]any{"type": "string"},
		}),
	}
}

func addChild() Handler {
	return Func{
		Fn: func(_ context.Context, node *models.Node, params Params) (map[string]any, error) {
			return map[string]any{
				"action":         "add-child",
				"message":        "Child creation requested",
				"parent_node_id": node.ID,
				"child_params":   params.Clone(),
			}, nil
		},
		ParamsSchema: objectSchema(creationProperties),
	}
}

func addIdea() Handler {
	return Func{
		Fn: func(_ context.Context, node *models.Node, params Params) (map[string]any, error) {
			return map[string]any{
				"action":         "add-idea",
				"message":        "Idea creation requested",
				"parent_node_id": node.ID,
				"idea_params":    params.Clone(),
			}, nil
		},
		ParamsSchema: objectSchema(creationProperties),
	}
}

func addMilestone() Handler {
	return Func{
		Fn: func(_ context.Context, node *models.Node, params Params) (map[string]any, error) {
			return map[string]any{
				"action":           "add-milestone",
				"message":          "Milestone creation requested",
				"project_id":       node.ProjectID,
				"milestone_params": params.Clone(),
			}, nil
		},
		ParamsSchema: objectSchema(map[string]any{
			"title": map[string]any{"type": "string"},
			"date":  map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		}),
	}
}
