// Package registry holds the action catalog: every known action and the
// context rules granting them to nodes.
package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/go-playground/validator/v10"
)

// Snapshot is an immutable view of the catalog. Readers hold on to one for
// the duration of a resolution so a concurrent registration never tears it.
type Snapshot struct {
	actions     map[string]models.Action
	actionOrder []string
	rules       map[string]models.ContextRule
	ruleOrder   []string
}

func (s *Snapshot) Action(id string) (models.Action, bool) {
	action, ok := s.actions[id]

	return action, ok
}

// Actions returns every action in registration order.
func (s *Snapshot) Actions() []models.Action {
	out := make([]models.Action, 0, len(s.actionOrder))
	for _, id := range s.actionOrder {
		out = append(out, s.actions[id])
	}

	return out
}

// ActionsByGroup returns the actions whose group is groupID.
func (s *Snapshot) ActionsByGroup(groupID string) []models.Action {
	var out []models.Action

	for _, id := range s.actionOrder {
		if action := s.actions[id]; action.Group == groupID && groupID != "" {
			out = append(out, action)
		}
	}

	return out
}

// ContextRule returns a copy of the rule; changing it leaves the catalog alone.
func (s *Snapshot) ContextRule(id string) (models.ContextRule, bool) {
	rule, ok := s.rules[id]

	return rule.Clone(), ok
}

// ContextRules returns copies of every rule in registration order.
func (s *Snapshot) ContextRules() []models.ContextRule {
	out := make([]models.ContextRule, 0, len(s.ruleOrder))
	for _, id := range s.ruleOrder {
		out = append(out, s.rules[id].Clone())
	}

	return out
}

func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		actions:     make(map[string]models.Action, len(s.actions)+1),
		actionOrder: slices.Clone(s.actionOrder),
		rules:       make(map[string]models.ContextRule, len(s.rules)+1),
		ruleOrder:   slices.Clone(s.ruleOrder),
	}

	for k, v := range s.actions {
		next.actions[k] = v
	}

	for k, v := range s.rules {
		next.rules[k] = v
	}

	return next
}

// Registry is the action catalog. Reads are lock-free; registrations copy the
// current snapshot and swap it in.
type Registry struct {
	logger    *slog.Logger
	validator *validator.Validate
	current   atomic.Pointer[Snapshot]
	writeMu   sync.Mutex
}

// New returns an empty catalog.
func New(log *slog.Logger) *Registry {
	r := &Registry{
		logger:    log.With("module", "registry"),
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
	r.current.Store(&Snapshot{
		actions: map[string]models.Action{},
		rules:   map[string]models.ContextRule{},
	})

	return r
}

// NewDefault returns a catalog loaded with the built-in actions and rules.
func NewDefault(log *slog.Logger) *Registry {
	r := New(log)
	r.RegisterDefaults()

	return r
}

func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

func (r *Registry) Action(id string) (models.Action, bool) {
	return r.Snapshot().Action(id)
}

func (r *Registry) Actions() []models.Action {
	return r.Snapshot().Actions()
}

func (r *Registry) ActionsByGroup(groupID string) []models.Action {
	return r.Snapshot().ActionsByGroup(groupID)
}

func (r *Registry) ContextRule(id string) (models.ContextRule, bool) {
	return r.Snapshot().ContextRule(id)
}

func (r *Registry) ContextRules() []models.ContextRule {
	return r.Snapshot().ContextRules()
}

// RegisterAction inserts or replaces the action with the same id.
func (r *Registry) RegisterAction(action models.Action) error {
	if err := r.validator.Struct(action); err != nil {
		return fmt.Errorf("invalid action %q: %w", action.ID, err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	next := r.current.Load().clone()
	if _, exists := next.actions[action.ID]; !exists {
		next.actionOrder = append(next.actionOrder, action.ID)
	}

	next.actions[action.ID] = action
	r.current.Store(next)

	r.logger.Debug("Registered action", "action_id", action.ID, "handler", action.Handler)

	return nil
}

// RegisterContextRule inserts or replaces the rule with the same id. A
// replaced rule keeps its original position.
func (r *Registry) RegisterContextRule(rule models.ContextRule) error {
	if err := r.validator.Struct(rule); err != nil {
		return fmt.Errorf("invalid context rule %q: %w", rule.ID, err)
	}

	rule = rule.Clone()

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	next := r.current.Load().clone()
	if _, exists := next.rules[rule.ID]; !exists {
		next.ruleOrder = append(next.ruleOrder, rule.ID)
	}

	next.rules[rule.ID] = rule
	r.current.Store(next)

	r.logger.Debug("Registered context rule", "rule_id", rule.ID, "actions", len(rule.Actions))

	return nil
}
