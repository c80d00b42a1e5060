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

// NodeRepository handles node-related database operations.
type NodeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const nodeColumns = `project_id, id, label, type, status, priority, progress, parent_id, tags, metadata, created_at, updated_at`

func (r *NodeRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Node, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+nodeColumns+`
		FROM nodes
		WHERE project_id = $1
		ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	nodes := []*models.Node{}

	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}

		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	return nodes, nil
}

func (r *NodeRepository) Get(ctx context.Context, projectID, nodeID string) (*models.Node, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+nodeColumns+`
		FROM nodes
		WHERE project_id = $1 AND id = $2
	`, projectID, nodeID)

	node, err := scanNode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewNodeError("Get", projectID, nodeID, persistence.ErrNodeNotFound)
		}

		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	return node, nil
}

// Save saves a node to the database (insert or update).
func (r *NodeRepository) Save(ctx context.Context, node *models.Node) error {
	return upsertNode(ctx, r.db, node)
}

// Delete removes the node together with its incident edges and history.
func (r *NodeRepository) Delete(ctx context.Context, projectID, nodeID string) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		return deleteNode(ctx, tx, projectID, nodeID)
	})
}

func deleteNode(ctx context.Context, tx *sql.Tx, projectID, nodeID string) error {
	for _, stmt := range []string{
		`DELETE FROM action_history WHERE project_id = $1 AND node_id = $2`,
		`DELETE FROM edges WHERE project_id = $1 AND (source = $2 OR target = $2)`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, projectID, nodeID); err != nil {
			return fmt.Errorf("failed to delete node %s: %w", nodeID, err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE project_id = $1 AND id = $2`, projectID, nodeID)
	if err != nil {
		return fmt.Errorf("failed to delete node %s: %w", nodeID, err)
	}

	if rowsAffected(result) == 0 {
		return persistence.NewNodeError("Delete", projectID, nodeID, persistence.ErrNodeNotFound)
	}

	return nil
}

func upsertNode(ctx context.Context, ex execer, node *models.Node) error {
	tags, err := marshalJSON(node.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal node tags: %w", err)
	}

	metadata, err := marshalJSON(node.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal node metadata: %w", err)
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO nodes (`+nodeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (project_id, id) DO UPDATE SET
			label = EXCLUDED.label,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			progress = EXCLUDED.progress,
			parent_id = EXCLUDED.parent_id,
			tags = EXCLUDED.tags,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at
	`,
		node.ProjectID,
		node.ID,
		node.Label,
		string(node.Type),
		string(node.Status),
		node.Priority,
		node.Progress,
		node.ParentID,
		tags,
		metadata,
		node.CreatedAt.UTC(),
		node.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save node: %w", err)
	}

	return nil
}

func scanNode(row scanner) (*models.Node, error) {
	var (
		node           models.Node
		nodeType       string
		status         string
		parentID       sql.NullString
		tags, metadata string
	)

	err := row.Scan(
		&node.ProjectID,
		&node.ID,
		&node.Label,
		&nodeType,
		&status,
		&node.Priority,
		&node.Progress,
		&parentID,
		&tags,
		&metadata,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	node.Type = models.NodeType(nodeType)
	node.Status = models.NodeStatus(status)

	if parentID.Valid {
		node.ParentID = &parentID.String
	}

	if err := json.Unmarshal([]byte(tags), &node.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node tags: %w", err)
	}

	if err := json.Unmarshal([]byte(metadata), &node.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node metadata: %w", err)
	}

	return &node, nil
}

// nodeExists reports whether the node is stored in the project.
func nodeExists(ctx context.Context, tx *sql.Tx, projectID, nodeID string) (bool, error) {
	var found int

	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM nodes WHERE project_id = $1 AND id = $2`, projectID, nodeID,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to look up node %s: %w", nodeID, err)
	}

	return true, nil
}
