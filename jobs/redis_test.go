package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsgraph/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreWithClient(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	rec := &types.JobRecord{
		ID:     "job-1",
		Status: types.JobDone,
		Result: &types.BatchResult{Counters: types.BatchCounters{Saved: 3}},
	}
	if err := s.Set(ctx, rec, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != types.JobDone || got.Result == nil || got.Result.Counters.Saved != 3 {
		t.Errorf("got = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Errorf("UpdatedAt not stamped")
	}
}

func TestRedisStoreMissingJob(t *testing.T) {
	s, _ := newTestRedisStore(t)

	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	rec := &types.JobRecord{ID: "job-ttl", Status: types.JobQueued}
	if err := s.Set(ctx, rec, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := s.Get(ctx, "job-ttl"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after TTL", err)
	}
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	s, mr := newTestRedisStore(t)

	rec := &types.JobRecord{ID: "job-k", Status: types.JobQueued}
	if err := s.Set(context.Background(), rec, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("jobs:job-k") {
		t.Fatalf("expected key jobs:job-k, keys: %v", mr.Keys())
	}
}
