package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/events"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/google/uuid"
)

type Milestone struct {
	persistence persistence.Persistence
	notifier
}

// NewMilestone creates a new milestone service. publisher may be nil.
func NewMilestone(logger *slog.Logger, p persistence.Persistence, publisher eventbus.EventPublisher) *Milestone {
	return &Milestone{
		persistence: p,
		notifier:    newNotifier(logger, publisher, "milestone_service"),
	}
}

type CreateMilestoneInput struct {
	ID          string
	Title       string
	Date        string
	Status      string
	Description string
	LinkedNodes []string
}

type UpdateMilestoneInput struct {
	Title       *string
	Date        *string
	Status      *string
	Description *string
	LinkedNodes []string
}

func (s *Milestone) List(ctx context.Context, projectID string) ([]*models.Milestone, error) {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return nil, err
	}

	return s.persistence.MilestoneRepository().ListByProject(ctx, projectID)
}

func (s *Milestone) Get(ctx context.Context, projectID, milestoneID string) (*models.Milestone, error) {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return nil, err
	}

	return s.persistence.MilestoneRepository().Get(ctx, projectID, milestoneID)
}

func (s *Milestone) Create(ctx context.Context, projectID string, input CreateMilestoneInput) (*models.Milestone, error) {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.New().String()
	}

	now := s.timestamp()
	milestone := &models.Milestone{
		ID:          id,
		ProjectID:   projectID,
		Title:       strings.TrimSpace(input.Title),
		Date:        input.Date,
		Status:      models.MilestoneStatus(strings.ToLower(input.Status)),
		Description: input.Description,
		LinkedNodes: input.LinkedNodes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if milestone.Status == "" {
		milestone.Status = models.MilestoneStatusPlanned
	}

	if milestone.LinkedNodes == nil {
		milestone.LinkedNodes = []string{}
	}

	if err := validateStruct("CreateMilestone", milestone); err != nil {
		return nil, err
	}

	if err := s.persistence.MilestoneRepository().Save(ctx, milestone); err != nil {
		return nil, fmt.Errorf("failed to save milestone: %w", err)
	}

	s.publish(ctx, projectID, events.NewMilestoneChanged(projectID, events.ReasonMilestoneAdded, milestone.ID))

	return milestone, nil
}

func (s *Milestone) Update(ctx context.Context, projectID, milestoneID string, input UpdateMilestoneInput) (*models.Milestone, error) {
	milestone, err := s.Get(ctx, projectID, milestoneID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		milestone.Title = strings.TrimSpace(*input.Title)
	}

	if input.Date != nil {
		milestone.Date = *input.Date
	}

	if input.Status != nil {
		milestone.Status = models.MilestoneStatus(strings.ToLower(*input.Status))
	}

	if input.Description != nil {
		milestone.Description = *input.Description
	}

	if input.LinkedNodes != nil {
		milestone.LinkedNodes = input.LinkedNodes
	}

	if err := validateStruct("UpdateMilestone", milestone); err != nil {
		return nil, err
	}

	milestone.UpdatedAt = s.timestamp()

	if err := s.persistence.MilestoneRepository().Save(ctx, milestone); err != nil {
		return nil, fmt.Errorf("failed to save milestone: %w", err)
	}

	s.publish(ctx, projectID, events.NewMilestoneChanged(projectID, events.ReasonMilestoneUpdated, milestone.ID))

	return milestone, nil
}

func (s *Milestone) Delete(ctx context.Context, projectID, milestoneID string) error {
	if err := ensureProject(ctx, s.persistence, projectID); err != nil {
		return err
	}

	if err := s.persistence.MilestoneRepository().Delete(ctx, projectID, milestoneID); err != nil {
		return err
	}

	s.publish(ctx, projectID, events.NewMilestoneChanged(projectID, events.ReasonMilestoneDeleted, milestoneID))

	return nil
}
