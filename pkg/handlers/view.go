package handlers

import (
	"context"

	"github.com/dukex/vislzr/pkg/models"
)

func viewTimeline() Handler {
	return Func{Fn: func(_ context.Context, node *models.Node, _ Params) (map[string]any, error) {
		return map[string]any{
			"action":  "view-timeline",
			"message": "Timeline view requested",
			"node_id": node.ID,
		}, nil
	}}
}

func viewStatusLog() Handler {
	return Func{Fn: func(_ context.Context, node *models.Node, _ Params) (map[string]any, error) {
		return map[string]any{
			"action":         "view-status-log",
			"message":        "Status log view requested",
			"node_id":        node.ID,
			"current_status": string(node.Status),
		}, nil
	}}
}

func viewDependencies() Handler {
	return Func{Fn: func(_ context.Context, node *models.Node, _ Params) (map[string]any, error) {
		return map[string]any{
			"action":       "view-dependencies",
			"node_id":      node.ID,
			"dependencies": node.Metadata.Dependencies(),
		}, nil
	}}
}

func viewDetails() Handler {
	return Func{Fn: func(_ context.Context, node *models.Node, _ Params) (map[string]any, error) {
		return map[string]any{
			"action": "view-details",
			"node": map[string]any{
				"id":       node.ID,
				"label":    node.Label,
				"type":     string(node.Type),
				"status":   string(node.Status),
				"priority": node.Priority,
				"progress": node.Progress,
				"metadata": node.Metadata.AsMap(),
			},
		}, nil
	}}
}

func viewSchema() Handler {
	return Func{Fn: func(_ context.Context, node *models.Node, _ Params) (map[string]any, error) {
		return map[string]any{
			"action":  "view-schema",
			"node_id": node.ID,
			"schema":  node.Metadata.Schema(),
		}, nil
	}}
}
