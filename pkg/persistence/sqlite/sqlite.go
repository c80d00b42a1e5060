// Package sqlite provides an embedded SQLite persistence for project graphs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/vislzr/pkg/persistence/sqlbase"
	_ "modernc.org/sqlite"
)

const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// Persistence implements the persistence layer for SQLite.
type Persistence struct {
	*sqlbase.Store
}

// NewPersistence opens the database at databaseURL. Both "sqlite://path" and
// a bare path are accepted.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("sqlite", dsn(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY between them.
	database.SetMaxOpenConns(1)

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store, err := sqlbase.NewStore(ctx, logger.With("module", "sqlite"), database, migrations())
	if err != nil {
		_ = database.Close()

		return nil, err
	}

	return &Persistence{Store: store}, nil
}

func dsn(databaseURL string) string {
	path := strings.TrimPrefix(databaseURL, "sqlite://")

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return path + separator + pragmas
}
