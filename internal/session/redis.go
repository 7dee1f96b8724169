package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/guildpulse/dashboard/internal/domain"
)

// RedisStore keeps sessions in Redis so multiple dashboard instances can
// share them. The identity is stored as JSON under session:<sid> with the
// TTL enforced by Redis itself.
type RedisStore struct {
	rdb *goredis.Client
}

func NewRedisStore(rdb *goredis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// NewRedisClient creates a go-redis client from a URL (e.g. "redis://localhost:6379")
// and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) Get(ctx context.Context, sid uuid.UUID) (*domain.Identity, error) {
	// GETEX rolls the TTL atomically with the read.
	raw, err := s.rdb.GetEx(ctx, sessionKey(sid), TTL).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &identity, nil
}

func (s *RedisStore) Put(ctx context.Context, sid uuid.UUID, identity *domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sid), raw, TTL).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sid uuid.UUID) error {
	if err := s.rdb.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(sid uuid.UUID) string {
	return "session:" + sid.String()
}
