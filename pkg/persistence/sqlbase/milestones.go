package sqlbase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
)

// MilestoneRepository handles milestone-related database operations.
type MilestoneRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const milestoneColumns = `project_id, id, title, date, status, description, linked_nodes, created_at, updated_at`

func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Milestone, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+milestoneColumns+`
		FROM milestones
		WHERE project_id = $1
		ORDER BY date, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	milestones := []*models.Milestone{}

	for rows.Next() {
		milestone, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}

		milestones = append(milestones, milestone)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating milestones: %w", err)
	}

	return milestones, nil
}

func (r *MilestoneRepository) Get(ctx context.Context, projectID, milestoneID string) (*models.Milestone, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+milestoneColumns+`
		FROM milestones
		WHERE project_id = $1 AND id = $2
	`, projectID, milestoneID)

	milestone, err := scanMilestone(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewMilestoneError("Get", projectID, milestoneID, persistence.ErrMilestoneNotFound)
		}

		return nil, fmt.Errorf("failed to scan milestone: %w", err)
	}

	return milestone, nil
}

func (r *MilestoneRepository) Save(ctx context.Context, milestone *models.Milestone) error {
	return upsertMilestone(ctx, r.db, milestone)
}

func (r *MilestoneRepository) Delete(ctx context.Context, projectID, milestoneID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM milestones WHERE project_id = $1 AND id = $2`, projectID, milestoneID)
	if err != nil {
		return fmt.Errorf("failed to delete milestone %s: %w", milestoneID, err)
	}

	if rowsAffected(result) == 0 {
		return persistence.NewMilestoneError("Delete", projectID, milestoneID, persistence.ErrMilestoneNotFound)
	}

	return nil
}

func upsertMilestone(ctx context.Context, ex execer, milestone *models.Milestone) error {
	linked := milestone.LinkedNodes
	if linked == nil {
		linked = []string{}
	}

	linkedNodes, err := marshalJSON(linked)
	if err != nil {
		return fmt.Errorf("failed to marshal linked nodes: %w", err)
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO milestones (`+milestoneColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (project_id, id) DO UPDATE SET
			title = EXCLUDED.title,
			date = EXCLUDED.date,
			status = EXCLUDED.status,
			description = EXCLUDED.description,
			linked_nodes = EXCLUDED.linked_nodes,
			updated_at = EXCLUDED.updated_at
	`,
		milestone.ProjectID,
		milestone.ID,
		milestone.Title,
		milestone.Date,
		string(milestone.Status),
		milestone.Description,
		linkedNodes,
		milestone.CreatedAt.UTC(),
		milestone.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save milestone: %w", err)
	}

	return nil
}

func scanMilestone(row scanner) (*models.Milestone, error) {
	var (
		milestone   models.Milestone
		status      string
		linkedNodes string
	)

	err := row.Scan(
		&milestone.ProjectID,
		&milestone.ID,
		&milestone.Title,
		&milestone.Date,
		&status,
		&milestone.Description,
		&linkedNodes,
		&milestone.CreatedAt,
		&milestone.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	milestone.Status = models.MilestoneStatus(status)

	if err := json.Unmarshal([]byte(linkedNodes), &milestone.LinkedNodes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal linked nodes: %w", err)
	}

	return &milestone, nil
}
