package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/google/uuid"
)

type Project struct {
	persistence persistence.Persistence
	notifier
}

// NewProject creates a new project service. publisher may be nil.
func NewProject(logger *slog.Logger, p persistence.Persistence, publisher eventbus.EventPublisher) *Project {
	return &Project{
		persistence: p,
		notifier:    newNotifier(logger, publisher, "project_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Project) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := s.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

type CreateProjectInput struct {
	ID          string
	Name        string
	Description string
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
}

func (s *Project) List(ctx context.Context) ([]*models.Project, error) {
	projects, err := s.persistence.ProjectRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

func (s *Project) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.persistence.ProjectRepository().Get(ctx, id)
}

// Create stores a new project. An id is generated when none is given; a
// taken id is a conflict.
func (s *Project) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.New().String()
	} else {
		_, err := s.persistence.ProjectRepository().Get(ctx, id)
		if err == nil {
			return nil, persistence.NewProjectError("Create", id, persistence.ErrProjectAlreadyExists)
		}

		if !persistence.IsProjectNotFound(err) {
			return nil, fmt.Errorf("failed to check project: %w", err)
		}
	}

	now := s.timestamp()
	project := &models.Project{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := validateStruct("CreateProject", project); err != nil {
		return nil, err
	}

	if err := s.persistence.ProjectRepository().Save(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	s.logger.InfoContext(ctx, "Project created", "project_id", project.ID)

	return project, nil
}

func (s *Project) Update(ctx context.Context, id string, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.persistence.ProjectRepository().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		project.Name = strings.TrimSpace(*input.Name)
	}

	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := validateStruct("UpdateProject", project); err != nil {
		return nil, err
	}

	project.UpdatedAt = s.timestamp()

	if err := s.persistence.ProjectRepository().Save(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	return project, nil
}

// Delete removes the project together with its graph and history.
func (s *Project) Delete(ctx context.Context, id string) error {
	if err := s.persistence.ProjectRepository().Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Project deleted", "project_id", id)

	return nil
}

// ensureProject returns ErrProjectNotFound when id does not exist.
func ensureProject(ctx context.Context, p persistence.Persistence, id string) error {
	_, err := p.ProjectRepository().Get(ctx, id)

	return err
}
