package handlers

import (
	"context"

	"github.com/dukex/vislzr/pkg/models"
)

func expandGroup() Handler {
	return Func{
		Fn: func(_ context.Context, node *models.Node, params Params) (map[string]any, error) {
			return map[string]any{
				"action":   "expand-group",
				"node_id":  node.ID,
				"group_id": params.String("group_id"),
			}, nil
		},
		ParamsSchema: objectSchema(map[string]any{
			"group_id": map[string]any{"type": "string"},
		}),
	}
}
