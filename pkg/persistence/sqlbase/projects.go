package sqlbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ProjectRepository handles project-related database operations.
type ProjectRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *ProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM projects
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	projects := []*models.Project{}

	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM projects
		WHERE id = $1
	`, id)

	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewProjectError("Get", id, persistence.ErrProjectNotFound)
		}

		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	return project, nil
}

func (r *ProjectRepository) Save(ctx context.Context, project *models.Project) error {
	return upsertProject(ctx, r.db, project)
}

// Delete removes the project and everything it owns in one transaction.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM action_history WHERE project_id = $1`,
			`DELETE FROM edges WHERE project_id = $1`,
			`DELETE FROM milestones WHERE project_id = $1`,
			`DELETE FROM nodes WHERE project_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete project %s: %w", id, err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete project %s: %w", id, err)
		}

		if rowsAffected(result) == 0 {
			return persistence.NewProjectError("Delete", id, persistence.ErrProjectNotFound)
		}

		return nil
	})
}

func upsertProject(ctx context.Context, ex execer, project *models.Project) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
	`,
		project.ID,
		project.Name,
		project.Description,
		project.CreatedAt.UTC(),
		project.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	return nil
}

func scanProject(row scanner) (*models.Project, error) {
	var project models.Project

	err := row.Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &project, nil
}
