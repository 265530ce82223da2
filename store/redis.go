// Package store provides persistent SessionStore backends.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	dialoguesdk "github.com/convergely/stakeholder-sdk-go"
)

// RedisStore implements dialoguesdk.SessionStore on Redis. Snapshots are
// stored as JSON under "{prefix}:{session_id}".
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Prefix string        // key prefix, default "dlg"
	TTL    time.Duration // snapshot expiry, 0 = keep forever
}

// NewRedisStore creates a SessionStore backed by Redis. Works with a
// Client, ClusterClient, or Ring.
func NewRedisStore(client redis.UniversalClient, config ...RedisConfig) *RedisStore {
	cfg := RedisConfig{Prefix: "dlg"}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Prefix == "" {
			cfg.Prefix = "dlg"
		}
	}
	return &RedisStore{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Save writes the snapshot, refreshing the TTL when one is configured.
func (s *RedisStore) Save(ctx context.Context, snap *dialoguesdk.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snap.ID, err)
	}
	if err := s.client.Set(ctx, s.key(snap.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Load fetches a snapshot; unknown ids yield ErrSnapshotNotFound.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*dialoguesdk.SessionSnapshot, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, dialoguesdk.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", sessionID, err)
	}
	var snap dialoguesdk.SessionSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", sessionID, err)
	}
	return &snap, nil
}

// Delete removes a snapshot. Deleting an absent id is not an error.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", sessionID, err)
	}
	return nil
}

// List returns all stored session ids under the prefix.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.Keys(ctx, s.prefix+":*").Result()
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, s.prefix+":"))
	}
	return ids, nil
}
