// Package scheduler runs periodic maintenance over stored projects.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/events"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/robfig/cron/v3"
)

// OverdueSweeper marks TASK and MILESTONE nodes whose due date has passed as
// OVERDUE.
type OverdueSweeper struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	schedule    string
	now         func() time.Time
	cron        *cron.Cron
}

type Option func(*OverdueSweeper)

func WithClock(now func() time.Time) Option {
	return func(s *OverdueSweeper) {
		s.now = now
	}
}

// NewOverdueSweeper validates schedule, a standard five field cron expression
// or a descriptor such as "@hourly". publisher may be nil.
func NewOverdueSweeper(
	logger *slog.Logger,
	p persistence.Persistence,
	publisher eventbus.EventPublisher,
	schedule string,
	opts ...Option,
) (*OverdueSweeper, error) {
	if schedule == "" {
		return nil, errors.New("overdue sweeper schedule is required")
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	s := &OverdueSweeper{
		persistence: p,
		publisher:   publisher,
		logger:      logger.With("module", "overdue_sweeper", "schedule", schedule),
		schedule:    schedule,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *OverdueSweeper) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Starting overdue sweeper")

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(s.schedule, func() {
		marked, err := s.Sweep(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Overdue sweep failed", "error", err)

			return
		}

		s.logger.DebugContext(ctx, "Overdue sweep finished", "marked", marked)
	})
	if err != nil {
		return fmt.Errorf("failed to add overdue sweep job: %w", err)
	}

	s.cron.Start()

	return nil
}

func (s *OverdueSweeper) Stop(ctx context.Context) {
	s.logger.InfoContext(ctx, "Stopping overdue sweeper")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep runs one pass over every project and returns how many nodes were
// marked.
func (s *OverdueSweeper) Sweep(ctx context.Context) (int, error) {
	projects, err := s.persistence.ProjectRepository().List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list projects: %w", err)
	}

	now := s.now().UTC()
	marked := 0

	var errs []error

	for _, project := range projects {
		nodes, err := s.persistence.NodeRepository().ListByProject(ctx, project.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("project %s: %w", project.ID, err))

			continue
		}

		for _, node := range nodes {
			if !IsOverdue(node, now) {
				continue
			}

			node.Status = models.NodeStatusOverdue
			node.UpdatedAt = now

			if err := s.persistence.NodeRepository().Save(ctx, node); err != nil {
				errs = append(errs, fmt.Errorf("node %s: %w", node.ID, err))

				continue
			}

			marked++

			s.logger.InfoContext(ctx, "Node marked overdue", "project_id", project.ID, "node_id", node.ID, "due_date", node.Metadata.DueDate)

			if s.publisher != nil {
				event := events.NewNodeChanged(project.ID, events.ReasonNodeUpdated, node.ID)
				if err := s.publisher.Publish(ctx, project.ID, event); err != nil {
					s.logger.WarnContext(ctx, "Failed to publish overdue change", "node_id", node.ID, "error", err)
				}
			}
		}
	}

	return marked, errors.Join(errs...)
}

// IsOverdue reports whether node should move to OVERDUE at now. A plain date
// counts as due at the end of that day.
func IsOverdue(node *models.Node, now time.Time) bool {
	if node.Type != models.NodeTypeTask && node.Type != models.NodeTypeMilestone {
		return false
	}

	if node.Status == models.NodeStatusCompleted || node.Status == models.NodeStatusOverdue {
		return false
	}

	due, ok := node.Metadata.DueAt()
	if !ok {
		return false
	}

	if len(node.Metadata.DueDate) == len(time.DateOnly) {
		due = due.AddDate(0, 0, 1)
	}

	return !now.Before(due)
}
