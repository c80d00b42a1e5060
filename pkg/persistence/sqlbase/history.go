package sqlbase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
)

// HistoryRepository stores executed actions. The seq column breaks ties
// between entries sharing executed_at.
type HistoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func (r *HistoryRepository) Append(ctx context.Context, entry *models.ActionHistory) error {
	result, err := marshalJSON(entry.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal history result: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO action_history (id, project_id, node_id, action_id, status, result, error_message, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		entry.ID,
		entry.ProjectID,
		entry.NodeID,
		entry.ActionID,
		string(entry.Status),
		result,
		entry.ErrorMessage,
		entry.ExecutedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	return nil
}

func (r *HistoryRepository) ListByNode(
	ctx context.Context,
	projectID, nodeID string,
	limit int,
) ([]*models.ActionHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, node_id, action_id, status, result, error_message, executed_at
		FROM action_history
		WHERE project_id = $1 AND node_id = $2
		ORDER BY executed_at DESC, seq DESC
		LIMIT $3
	`, projectID, nodeID, persistence.HistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	entries := []*models.ActionHistory{}

	for rows.Next() {
		var (
			entry  models.ActionHistory
			status string
			result string
		)

		err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&entry.NodeID,
			&entry.ActionID,
			&status,
			&result,
			&entry.ErrorMessage,
			&entry.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}

		entry.Status = models.ExecutionStatus(status)

		if err := json.Unmarshal([]byte(result), &entry.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history result: %w", err)
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}
