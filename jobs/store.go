package jobs

import (
	"context"
	"errors"
	"time"

	"newsgraph/types"
)

// ErrNotFound is returned when a job id is unknown or its record expired.
var ErrNotFound = errors.New("job not found")

// Store persists job status records with a bounded retention window.
// Backends: Redis for shared deployments, an in-process map otherwise.
type Store interface {
	Set(ctx context.Context, rec *types.JobRecord, ttl time.Duration) error
	Get(ctx context.Context, id string) (*types.JobRecord, error)
}
