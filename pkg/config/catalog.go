// Package config loads catalog extensions from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/dukex/vislzr/pkg/handlers"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/registry"
	"gopkg.in/yaml.v3"
)

// CatalogFile is the layout of a catalog extension file. Entries with the id
// of a built-in replace it.
type CatalogFile struct {
	Actions []ActionConfig `yaml:"actions"`
	Rules   []RuleConfig   `yaml:"rules"`
}

type ActionConfig struct {
	ID              string `yaml:"id"`
	Label           string `yaml:"label"`
	Icon            string `yaml:"icon"`
	Type            string `yaml:"type"`
	Category        string `yaml:"category"`
	Group           string `yaml:"group"`
	Handler         string `yaml:"handler"`
	RequiresContext bool   `yaml:"requires_context"`
	AIPowered       bool   `yaml:"ai_powered"`
	Priority        int    `yaml:"priority"`
}

func (a ActionConfig) model() models.Action {
	return models.Action{
		ID:              a.ID,
		Label:           a.Label,
		Icon:            a.Icon,
		Kind:            models.ActionKind(a.Type),
		Category:        models.ActionCategory(a.Category),
		Group:           a.Group,
		Handler:         a.Handler,
		RequiresContext: a.RequiresContext,
		AIPowered:       a.AIPowered,
		Priority:        a.Priority,
	}
}

type RuleConfig struct {
	ID           string   `yaml:"id"`
	NodeTypes    []string `yaml:"node_types"`
	NodeStatuses []string `yaml:"node_statuses"`
	Actions      []string `yaml:"actions"`
	Priority     int      `yaml:"priority"`
}

func (r RuleConfig) model() models.ContextRule {
	return models.ContextRule{
		ID:           r.ID,
		NodeTypes:    r.NodeTypes,
		NodeStatuses: r.NodeStatuses,
		Actions:      r.Actions,
		Priority:     r.Priority,
	}
}

// LoadCatalog reads a catalog extension from path.
func LoadCatalog(path string) (*CatalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog extension. Unknown keys are rejected.
func ParseCatalog(data []byte) (*CatalogFile, error) {
	var file CatalogFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	return &file, nil
}

// HandlerLookup resolves handler names, see handlers.Table.
type HandlerLookup interface {
	Lookup(name string) (handlers.Handler, bool)
}

// Apply registers the file's actions, then its rules. Every action must name
// a handler known to lookup and every rule may only grant cataloged actions.
// Entries registered before a failure stay registered.
func (f *CatalogFile) Apply(reg *registry.Registry, lookup HandlerLookup) error {
	for _, a := range f.Actions {
		if _, ok := lookup.Lookup(a.Handler); !ok {
			return fmt.Errorf("action %q: unknown handler %q", a.ID, a.Handler)
		}

		if err := reg.RegisterAction(a.model()); err != nil {
			return err
		}
	}

	var errs []error

	for _, r := range f.Rules {
		for _, actionID := range r.Actions {
			if _, ok := reg.Action(actionID); !ok {
				errs = append(errs, fmt.Errorf("rule %q: unknown action %q", r.ID, actionID))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	for _, r := range f.Rules {
		if err := reg.RegisterContextRule(r.model()); err != nil {
			return err
		}
	}

	return nil
}
