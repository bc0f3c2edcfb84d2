package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"newsgraph/types"

	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ Store = (*RedisStore)(nil)

const jobKeyPrefix = "jobs:"

// RedisStore keeps job records as JSON values with a Redis TTL handling
// expiry, so multiple service instances can share job state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient wraps an existing client (used by tests).
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, rec *types.JobRecord, ttl time.Duration) error {
	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal job record: %w", err)
	}
	if err := s.client.Set(ctx, jobKeyPrefix+rec.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save job record: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*types.JobRecord, error) {
	data, err := s.client.Get(ctx, jobKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job record: %w", err)
	}

	var rec types.JobRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job record: %w", err)
	}
	return &rec, nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
