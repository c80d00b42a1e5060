// Package resolver decides which catalog actions apply to a node.
package resolver

import (
	"cmp"
	"slices"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/registry"
)

// Catalog is the read side of the action registry.
type Catalog interface {
	Snapshot() *registry.Snapshot
}

type Resolver struct {
	catalog Catalog
}

func New(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// ActionsForContext returns the actions granted by every rule matching the
// raw node type and status, deduplicated and ordered by priority.
func (r *Resolver) ActionsForContext(nodeType, nodeStatus string) []models.Action {
	return actionsForContext(r.catalog.Snapshot(), nodeType, nodeStatus)
}

func actionsForContext(snap *registry.Snapshot, nodeType, nodeStatus string) []models.Action {
	seen := map[string]struct{}{}

	var actions []models.Action

	for _, rule := range snap.ContextRules() {
		if !rule.Matches(nodeType, nodeStatus) {
			continue
		}

		for _, id := range rule.Actions {
			if _, dup := seen[id]; dup {
				continue
			}

			seen[id] = struct{}{}

			// Dangling ids are inert.
			if action, ok := snap.Action(id); ok {
				actions = append(actions, action)
			}
		}
	}

	sortByPriority(actions)

	return actions
}

// ValidateAction reports whether actionID is available in the given context.
func (r *Resolver) ValidateAction(actionID, nodeType, nodeStatus string) bool {
	return slices.ContainsFunc(r.ActionsForContext(nodeType, nodeStatus), func(a models.Action) bool {
		return a.ID == actionID
	})
}

// ExpandGroup returns the members of groupID that are also available in the
// given context.
func (r *Resolver) ExpandGroup(groupID, nodeType, nodeStatus string) []models.Action {
	snap := r.catalog.Snapshot()

	available := map[string]struct{}{}
	for _, a := range actionsForContext(snap, nodeType, nodeStatus) {
		available[a.ID] = struct{}{}
	}

	var members []models.Action

	for _, a := range snap.ActionsByGroup(groupID) {
		if _, ok := available[a.ID]; ok {
			members = append(members, a)
		}
	}

	sortByPriority(members)

	return members
}

func sortByPriority(actions []models.Action) {
	slices.SortStableFunc(actions, func(a, b models.Action) int {
		return cmp.Or(cmp.Compare(a.Priority, b.Priority), cmp.Compare(a.ID, b.ID))
	})
}
