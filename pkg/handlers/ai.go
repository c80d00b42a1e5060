package handlers

import (
	"context"

	"github.com/dukex/vislzr/pkg/log"
	"github.com/dukex/vislzr/pkg/models"
)

const statusPending = "pending"

// placeholder answers for an AI action that is not wired to a model yet.
func placeholder(action, message string, extra func(*models.Node, Params, map[string]any)) Handler {
	return Func{Fn: func(ctx context.Context, node *models.Node, params Params) (map[string]any, error) {
		log.FromContext(ctx).DebugContext(ctx, "Answering with placeholder", "action", action)

		payload := map[string]any{
			"action":  action,
			"message": message + " (AI integration pending)",
			"node_id": node.ID,
			"status":  statusPending,
		}

		if extra != nil {
			extra(node, params, payload)
		}

		return payload, nil
	}}
}

func securityScan() Handler {
	return placeholder("security-scan", "Security scan initiated", nil)
}

func askAI() Handler {
	h := placeholder("ask-ai", "AI query received", func(_ *models.Node, params Params, payload map[string]any) {
		payload["query"] = params.String("query")
	}).(Func)

	h.ParamsSchema = objectSchema(map[string]any{
		"query": map[string]any{"type": "string"},
	})

	return h
}

func debugAI() Handler {
	return placeholder("debug-ai", "Debug analysis requested", func(node *models.Node, _ Params, payload map[string]any) {
		payload["current_status"] = string(node.Status)
	})
}

func unblockAI() Handler {
	return placeholder("unblock-ai", "Unblock suggestions requested", func(node *models.Node, _ Params, payload map[string]any) {
		payload["dependencies"] = node.Metadata.Dependencies()
	})
}

func alternativesAI() Handler {
	return placeholder("alternatives-ai", "Alternatives search requested", nil)
}
