// Package file provides file-based persistence: one JSON document per project.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
)

// document is the on-disk shape of a project.
type document struct {
	Project    *models.Project         `json:"project"`
	Nodes      []*models.Node          `json:"nodes"`
	Edges      []*models.Edge          `json:"edges"`
	Milestones []*models.Milestone     `json:"milestones"`
	History    []*models.ActionHistory `json:"history"`
}

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

// NewPersistence creates a file store rooted at root. A "file://" prefix is
// accepted.
func NewPersistence(root string) (*Persistence, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	if err := os.MkdirAll(filepath.Join(cleanRoot, "projects"), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Persistence{root: cleanRoot}, nil
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) ProjectRepository() persistence.ProjectRepository {
	return &projectRepository{fp: fp}
}

func (fp *Persistence) NodeRepository() persistence.NodeRepository {
	return &nodeRepository{fp: fp}
}

func (fp *Persistence) EdgeRepository() persistence.EdgeRepository {
	return &edgeRepository{fp: fp}
}

func (fp *Persistence) MilestoneRepository() persistence.MilestoneRepository {
	return &milestoneRepository{fp: fp}
}

func (fp *Persistence) ActionHistoryRepository() persistence.ActionHistoryRepository {
	return &historyRepository{fp: fp}
}

func (fp *Persistence) ReplaceGraph(_ context.Context, graph *models.Graph) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	doc, err := fp.read(graph.Project.ID)
	if err != nil && !persistence.IsProjectNotFound(err) {
		return err
	}

	if doc == nil {
		doc = &document{}
	}

	doc.Project = graph.Project
	doc.Nodes = slices.Clone(graph.Nodes)
	doc.Edges = slices.Clone(graph.Edges)
	doc.Milestones = slices.Clone(graph.Milestones)

	// History of nodes that no longer exist goes with them.
	doc.History = slices.DeleteFunc(doc.History, func(h *models.ActionHistory) bool {
		_, ok := graph.Node(h.NodeID)

		return !ok
	})

	return fp.write(doc)
}

func (fp *Persistence) path(projectID string) string {
	return filepath.Join(fp.root, "projects", filepath.Base(projectID)+".json")
}

// read loads a project document. Callers hold fp.mu.
func (fp *Persistence) read(projectID string) (*document, error) {
	data, err := os.ReadFile(fp.path(projectID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewProjectError("Read", projectID, persistence.ErrProjectNotFound)
		}

		return nil, fmt.Errorf("failed to read project %s: %w", projectID, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", projectID, err)
	}

	return &doc, nil
}

// write replaces the project document atomically. Callers hold fp.mu.
func (fp *Persistence) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project %s: %w", doc.Project.ID, err)
	}

	target := fp.path(doc.Project.ID)

	tmp, err := os.CreateTemp(filepath.Dir(target), ".project-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write project %s: %w", doc.Project.ID, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to move project %s into place: %w", doc.Project.ID, err)
	}

	return nil
}

// update applies fn to a project document under the write lock and saves it.
func (fp *Persistence) update(projectID string, fn func(doc *document) error) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	doc, err := fp.read(projectID)
	if err != nil {
		return err
	}

	if err := fn(doc); err != nil {
		return err
	}

	return fp.write(doc)
}

// view applies fn to a project document under the read lock.
func (fp *Persistence) view(projectID string, fn func(doc *document) error) error {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	doc, err := fp.read(projectID)
	if err != nil {
		return err
	}

	return fn(doc)
}
