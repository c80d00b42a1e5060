package resolver

import (
	"github.com/dukex/vislzr/pkg/models"
)

// DetectActions resolves the actions for a node's own type and status.
func (r *Resolver) DetectActions(node *models.Node) []models.Action {
	return r.ActionsForContext(string(node.Type), string(node.Status))
}

func (r *Resolver) ExpandGroupForNode(groupID string, node *models.Node) []models.Action {
	return r.ExpandGroup(groupID, string(node.Type), string(node.Status))
}

func (r *Resolver) ValidateForNode(actionID string, node *models.Node) bool {
	return r.ValidateAction(actionID, string(node.Type), string(node.Status))
}
