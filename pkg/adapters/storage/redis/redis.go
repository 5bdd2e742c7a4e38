package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/chaincfg/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix = "chaincfg:snapshot:"
	latestKey = keyPrefix + "latest"
)

// SnapshotStore implements ports.SnapshotStore using Redis
type SnapshotStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewSnapshotStore creates a new Redis snapshot store
func NewSnapshotStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Save persists the snapshot and points the latest key at it
func (s *SnapshotStore) Save(ctx context.Context, snapshot *ports.Snapshot) error {
	if snapshot == nil || snapshot.ID == "" {
		return fmt.Errorf("snapshot ID is required")
	}

	// Serialize snapshot
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, getSnapshotKey(snapshot.ID), data, s.ttl)
	pipe.Set(ctx, latestKey, snapshot.ID, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Debug("snapshot saved",
		zap.String("snapshot_id", snapshot.ID),
		zap.Duration("ttl", s.ttl))

	return nil
}

// Get retrieves a snapshot by ID
func (s *SnapshotStore) Get(ctx context.Context, id string) (*ports.Snapshot, error) {
	data, err := s.client.Get(ctx, getSnapshotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ports.ErrSnapshotNotFound, id)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snapshot ports.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

// Latest retrieves the most recently saved snapshot
func (s *SnapshotStore) Latest(ctx context.Context) (*ports.Snapshot, error) {
	id, err := s.client.Get(ctx, latestKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return s.Get(ctx, id)
}

// List returns all stored snapshot IDs
func (s *SnapshotStore) List(ctx context.Context) ([]string, error) {
	var cursor uint64
	var keys []string

	for {
		var batch []string
		var err error

		batch, cursor, err = s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, batch...)

		if cursor == 0 {
			break
		}
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == latestKey {
			continue
		}
		ids = append(ids, strings.TrimPrefix(key, keyPrefix))
	}

	return ids, nil
}

// SetTTL refreshes the expiry of a snapshot and of the latest pointer
func (s *SnapshotStore) SetTTL(ctx context.Context, id string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, getSnapshotKey(id), ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to set TTL: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrSnapshotNotFound, id)
	}

	if err := s.client.Expire(ctx, latestKey, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set TTL: %w", err)
	}

	return nil
}

// Delete removes a snapshot
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, getSnapshotKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	s.logger.Debug("snapshot deleted",
		zap.String("snapshot_id", id))

	return nil
}

// getSnapshotKey returns the Redis key for a snapshot
func getSnapshotKey(id string) string {
	return keyPrefix + id
}
