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

// EdgeRepository handles edge-related database operations.
type EdgeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const edgeColumns = `project_id, id, source, target, type, status, metadata, created_at`

func (r *EdgeRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Edge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+edgeColumns+`
		FROM edges
		WHERE project_id = $1
		ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	edges := []*models.Edge{}

	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}

		edges = append(edges, edge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return edges, nil
}

func (r *EdgeRepository) Get(ctx context.Context, projectID, edgeID string) (*models.Edge, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+edgeColumns+`
		FROM edges
		WHERE project_id = $1 AND id = $2
	`, projectID, edgeID)

	edge, err := scanEdge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewEdgeError("Get", projectID, edgeID, persistence.ErrEdgeNotFound)
		}

		return nil, fmt.Errorf("failed to scan edge: %w", err)
	}

	return edge, nil
}

// Save upserts the edge after checking that both endpoints exist.
func (r *EdgeRepository) Save(ctx context.Context, edge *models.Edge) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, endpoint := range []string{edge.Source, edge.Target} {
			found, err := nodeExists(ctx, tx, edge.ProjectID, endpoint)
			if err != nil {
				return err
			}

			if !found {
				return persistence.NewNodeError("SaveEdge", edge.ProjectID, endpoint, persistence.ErrNodeNotFound)
			}
		}

		return upsertEdge(ctx, tx, edge)
	})
}

func (r *EdgeRepository) Delete(ctx context.Context, projectID, edgeID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM edges WHERE project_id = $1 AND id = $2`, projectID, edgeID)
	if err != nil {
		return fmt.Errorf("failed to delete edge %s: %w", edgeID, err)
	}

	if rowsAffected(result) == 0 {
		return persistence.NewEdgeError("Delete", projectID, edgeID, persistence.ErrEdgeNotFound)
	}

	return nil
}

func upsertEdge(ctx context.Context, ex execer, edge *models.Edge) error {
	metadata, err := marshalJSON(edge.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal edge metadata: %w", err)
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO edges (`+edgeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (project_id, id) DO UPDATE SET
			source = EXCLUDED.source,
			target = EXCLUDED.target,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			metadata = EXCLUDED.metadata
	`,
		edge.ProjectID,
		edge.ID,
		edge.Source,
		edge.Target,
		string(edge.Type),
		string(edge.Status),
		metadata,
		edge.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save edge: %w", err)
	}

	return nil
}

func scanEdge(row scanner) (*models.Edge, error) {
	var (
		edge             models.Edge
		edgeType, status string
		metadata         string
	)

	err := row.Scan(
		&edge.ProjectID,
		&edge.ID,
		&edge.Source,
		&edge.Target,
		&edgeType,
		&status,
		&metadata,
		&edge.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	edge.Type = models.EdgeType(edgeType)
	edge.Status = models.EdgeStatus(status)

	if err := json.Unmarshal([]byte(metadata), &edge.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edge metadata: %w", err)
	}

	return &edge, nil
}
