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

// Store implements persistence.Persistence on database/sql. Queries use $N
// placeholders, which both PostgreSQL and SQLite accept.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore runs migrations on db and returns a store over it.
func NewStore(ctx context.Context, logger *slog.Logger, db *sql.DB, migrations map[int]string) (*Store, error) {
	migrationManager := NewMigrationManager(logger, db, migrations)

	err := migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (s *Store) ProjectRepository() persistence.ProjectRepository {
	return &ProjectRepository{db: s.db, logger: s.logger}
}

func (s *Store) NodeRepository() persistence.NodeRepository {
	return &NodeRepository{db: s.db, logger: s.logger}
}

func (s *Store) EdgeRepository() persistence.EdgeRepository {
	return &EdgeRepository{db: s.db, logger: s.logger}
}

func (s *Store) MilestoneRepository() persistence.MilestoneRepository {
	return &MilestoneRepository{db: s.db, logger: s.logger}
}

func (s *Store) ActionHistoryRepository() persistence.ActionHistoryRepository {
	return &HistoryRepository{db: s.db, logger: s.logger}
}

// ReplaceGraph rewrites the whole project inside one transaction.
func (s *Store) ReplaceGraph(ctx context.Context, graph *models.Graph) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertProject(ctx, tx, graph.Project); err != nil {
			return err
		}

		projectID := graph.Project.ID

		nodeIDs := make([]string, 0, len(graph.Nodes))
		for _, n := range graph.Nodes {
			nodeIDs = append(nodeIDs, n.ID)
		}

		for _, stmt := range []string{
			`DELETE FROM edges WHERE project_id = $1`,
			`DELETE FROM milestones WHERE project_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, projectID); err != nil {
				return fmt.Errorf("failed to clear project %s: %w", projectID, err)
			}
		}

		if err := deleteNodesNotIn(ctx, tx, projectID, nodeIDs); err != nil {
			return err
		}

		for _, n := range graph.Nodes {
			n.ProjectID = projectID
			if err := upsertNode(ctx, tx, n); err != nil {
				return err
			}
		}

		for _, e := range graph.Edges {
			e.ProjectID = projectID
			if err := upsertEdge(ctx, tx, e); err != nil {
				return err
			}
		}

		for _, m := range graph.Milestones {
			m.ProjectID = projectID
			if err := upsertMilestone(ctx, tx, m); err != nil {
				return err
			}
		}

		return nil
	})
}

// deleteNodesNotIn removes the nodes, and their history, that are absent from
// the new graph.
func deleteNodesNotIn(ctx context.Context, tx *sql.Tx, projectID string, keep []string) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM nodes WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to list nodes: %w", err)
	}

	var stale []string

	keepSet := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()

			return fmt.Errorf("failed to scan node id: %w", err)
		}

		if _, ok := keepSet[id]; !ok {
			stale = append(stale, id)
		}
	}

	if err := rows.Close(); err != nil {
		return err
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating nodes: %w", err)
	}

	for _, id := range stale {
		if err := deleteNode(ctx, tx, projectID, id); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return inTx(ctx, s.db, fn)
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func rowsAffected(result sql.Result) int64 {
	n, err := result.RowsAffected()
	if err != nil {
		return 0
	}

	return n
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
