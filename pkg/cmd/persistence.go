// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/dukex/vislzr/pkg/persistence/file"
	"github.com/dukex/vislzr/pkg/persistence/postgresql"
	"github.com/dukex/vislzr/pkg/persistence/redis"
	"github.com/dukex/vislzr/pkg/persistence/sqlite"
)

const DefaultDatabaseURL = "sqlite://./vislzr.db"

var supportedPersistenceProviders = []string{"file", "sqlite", "postgres", "postgresql"}

// NewPersistence opens the store named by databaseURL's scheme. An empty URL
// means DefaultDatabaseURL. When historyURL is set, action history is kept in
// Redis instead of the main store.
// nolint:ireturn // callers depend on the interface
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL, historyURL string) (persistence.Persistence, error) {
	if databaseURL == "" {
		databaseURL = DefaultDatabaseURL
	}

	base, err := newBasePersistence(ctx, logger, databaseURL)
	if err != nil {
		return nil, err
	}

	if historyURL == "" {
		return base, nil
	}

	history, err := redis.NewHistoryStore(ctx, logger, historyURL)
	if err != nil {
		_ = base.Close(ctx)

		return nil, err
	}

	return redis.WithHistory(base, history), nil
}

// nolint:ireturn
func newBasePersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	provider := parsePersistenceProvider(databaseURL)

	logger.InfoContext(ctx, "Opening persistence", "provider", provider)

	var (
		p   persistence.Persistence
		err error
	)

	switch provider {
	case "file":
		p, err = file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	case "sqlite":
		p, err = sqlite.NewPersistence(ctx, logger, databaseURL)
	case "postgres", "postgresql":
		p, err = postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported persistence provider %q, expected one of %s",
			provider, strings.Join(supportedPersistenceProviders, ", "))
	}

	if err != nil {
		return nil, err
	}

	return p, nil
}

// parsePersistenceProvider returns the URL scheme. A URL without one is a
// file store directory.
func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
