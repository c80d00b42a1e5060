// Package redis keeps action history in Redis lists, one list per node, in
// front of any other persistence backend.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "vislzr:history:"

	// MaxEntriesPerNode bounds every node list.
	MaxEntriesPerNode = 1000
)

// HistoryStore implements persistence.ActionHistoryRepository on Redis.
type HistoryStore struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewHistoryStore connects to the Redis server at redisURL
// (redis://[user:password@]host:port/db).
func NewHistoryStore(ctx context.Context, logger *slog.Logger, redisURL string) (*HistoryStore, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger = logger.With("module", "redis_history")
	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return &HistoryStore{client: client, logger: logger}, nil
}

func nodeKey(projectID, nodeID string) string {
	return keyPrefix + projectID + ":" + nodeID
}

func projectPattern(projectID string) string {
	return keyPrefix + projectID + ":*"
}

func (s *HistoryStore) Append(ctx context.Context, entry *models.ActionHistory) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	key := nodeKey(entry.ProjectID, entry.NodeID)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, MaxEntriesPerNode-1)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	return nil
}

// ListByNode reads the head of the node list. Appends push to the head, so
// the list is newest first.
func (s *HistoryStore) ListByNode(ctx context.Context, projectID, nodeID string, limit int) ([]*models.ActionHistory, error) {
	limit = persistence.HistoryLimit(limit)

	raw, err := s.client.LRange(ctx, nodeKey(projectID, nodeID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]*models.ActionHistory, 0, len(raw))

	for _, item := range raw {
		var entry models.ActionHistory
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			s.logger.WarnContext(ctx, "Skipping malformed history entry", "project_id", projectID, "node_id", nodeID, "error", err)

			continue
		}

		entries = append(entries, &entry)
	}

	return entries, nil
}

// DeleteNode drops the history of one node.
func (s *HistoryStore) DeleteNode(ctx context.Context, projectID, nodeID string) error {
	if err := s.client.Del(ctx, nodeKey(projectID, nodeID)).Err(); err != nil {
		return fmt.Errorf("failed to delete history of node %s: %w", nodeID, err)
	}

	return nil
}

// DeleteProject drops the history of every node in the project except keep.
func (s *HistoryStore) DeleteProject(ctx context.Context, projectID string, keep ...string) error {
	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[nodeKey(projectID, id)] = struct{}{}
	}

	iter := s.client.Scan(ctx, 0, projectPattern(projectID), 100).Iterator()

	var stale []string

	for iter.Next(ctx) {
		if _, ok := kept[iter.Val()]; !ok {
			stale = append(stale, iter.Val())
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan history of project %s: %w", projectID, err)
	}

	if len(stale) == 0 {
		return nil
	}

	if err := s.client.Del(ctx, stale...).Err(); err != nil {
		return fmt.Errorf("failed to delete history of project %s: %w", projectID, err)
	}

	s.logger.DebugContext(ctx, "Deleted history", "project_id", projectID, "keys", len(stale))

	return nil
}

// HealthCheck pings the server.
func (s *HistoryStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (s *HistoryStore) Close() error {
	return s.client.Close()
}

