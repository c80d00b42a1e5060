package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/vislzr/pkg/persistence/persistencetest"
	"github.com/dukex/vislzr/pkg/persistence/postgresql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Children first, parents last.
	for _, table := range []string{"action_history", "edges", "milestones", "nodes", "projects", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("vislzr_test"),
		postgres.WithUsername("vislzr"),
		postgres.WithPassword("vislzr"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)

	databaseURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	persistence, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, persistence.Close(ctx))
		assert.NoError(t, container.Terminate(context.Background()))

		cancel()
	})

	return persistence, ctx, databaseURL
}

func TestPersistence(t *testing.T) {
	p, _, _ := setupTestDB(t)

	persistencetest.RunSuite(t, p)
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	for _, table := range []string{"projects", "nodes", "edges", "milestones", "action_history"} {
		var exists bool

		err = db.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)
		`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestNewPersistence_InvalidURL(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	_, err := postgresql.NewPersistence(ctx, logger, "postgres://nobody@127.0.0.1:1/none?sslmode=disable")
	assert.Error(t, err)
}
