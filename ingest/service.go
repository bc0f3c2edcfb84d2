package ingest

import (
	"context"
	"strings"

	"newsgraph/config"
	"newsgraph/jobs"
	"newsgraph/logger"
	"newsgraph/types"

	"github.com/google/uuid"
)

// FeedFetcher resolves topics and feed URLs into item batches.
type FeedFetcher interface {
	FetchTopic(topic string, maxItems int) types.TopicResult
	FetchFeed(feedURL string) ([]types.FeedItem, string)
}

// Service runs ingestion jobs in the background. Submit* methods return a
// job ID immediately; callers poll the job store for status and results.
type Service struct {
	fetcher  FeedFetcher
	pipeline *Pipeline
	jobs     jobs.Store
	log      *logger.Logger
}

// NewService creates the job-running ingestion service.
func NewService(fetcher FeedFetcher, pipeline *Pipeline, jobStore jobs.Store, baseLog *logger.Logger) *Service {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &Service{
		fetcher:  fetcher,
		pipeline: pipeline,
		jobs:     jobStore,
		log:      baseLog.With("component", "ingest-service"),
	}
}

// SubmitTopic queues an ingestion job for a news topic.
func (s *Service) SubmitTopic(topic string, maxItems int) (string, error) {
	return s.submit(func(ctx context.Context, jobID string) {
		res := s.fetcher.FetchTopic(topic, maxItems)
		source := "topic:" + topic
		if res.SourceUsed != "" {
			source = "topic:" + res.SourceUsed
		}
		s.runBatch(ctx, jobID, res.Items, source, res.Attempts)
	})
}

// SubmitFeed queues an ingestion job for an RSS/Atom feed URL.
func (s *Service) SubmitFeed(feedURL string) (string, error) {
	return s.submit(func(ctx context.Context, jobID string) {
		items, diag := s.fetcher.FetchFeed(feedURL)
		attempts := []types.FetchAttempt{{Source: "rss:" + feedURL, Count: len(items), Diag: diag}}
		s.runBatch(ctx, jobID, items, "rss:"+feedURL, attempts)
	})
}

// SubmitURL queues an ingestion job for one article URL.
func (s *Service) SubmitURL(rawURL string) (string, error) {
	return s.submit(func(ctx context.Context, jobID string) {
		items := []types.FeedItem{{URL: strings.TrimSpace(rawURL)}}
		s.runBatch(ctx, jobID, items, "single-url", nil)
	})
}

// submit records the job as queued and runs it on its own goroutine. The job
// outlives the submitting request, so the runner gets a fresh context.
func (s *Service) submit(run func(ctx context.Context, jobID string)) (string, error) {
	jobID := uuid.NewString()
	rec := &types.JobRecord{ID: jobID, Status: types.JobQueued}
	if err := s.jobs.Set(context.Background(), rec, config.JobTTL); err != nil {
		return "", err
	}

	go func() {
		ctx := context.Background()
		s.setStatus(ctx, jobID, func(r *types.JobRecord) { r.Status = types.JobRunning })
		run(ctx, jobID)
	}()

	return jobID, nil
}

// runBatch ingests the resolved items and resolves the job. A batch with zero
// items still finishes as done — with the fetch diagnostics attached — unless
// every source attempt hard-failed, which marks the job as error.
func (s *Service) runBatch(ctx context.Context, jobID string, items []types.FeedItem, source string, attempts []types.FetchAttempt) {
	if len(items) == 0 && allFailed(attempts) {
		diag := attemptsDiag(attempts)
		s.log.Warn("job failed to resolve any source", "job_id", jobID, "diag", diag)
		s.setStatus(ctx, jobID, func(r *types.JobRecord) {
			r.Status = types.JobError
			r.Error = diag
		})
		return
	}

	progress := func(done, total int) {
		s.setStatus(ctx, jobID, func(r *types.JobRecord) {
			r.Progress = &types.JobProgress{Done: done, Total: total}
		})
	}

	res := s.pipeline.IngestBatch(ctx, items, source, progress)
	res.Attempts = attempts

	s.setStatus(ctx, jobID, func(r *types.JobRecord) {
		r.Status = types.JobDone
		r.Result = &res
	})
	s.log.Info("job done", "job_id", jobID, "saved", res.Counters.Saved)
}

// setStatus applies mutate to the stored record, tolerating a record that
// already expired from the job store.
func (s *Service) setStatus(ctx context.Context, jobID string, mutate func(*types.JobRecord)) {
	rec, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		rec = &types.JobRecord{ID: jobID}
	}
	mutate(rec)
	if err := s.jobs.Set(ctx, rec, config.JobTTL); err != nil {
		s.log.Warn("job status update failed", "job_id", jobID, "err", err)
	}
}

// allFailed reports whether every attempt produced zero items with a hard
// failure diagnostic.
func allFailed(attempts []types.FetchAttempt) bool {
	if len(attempts) == 0 {
		return false
	}
	for _, a := range attempts {
		if a.Count > 0 || !strings.HasPrefix(a.Diag, "both failed") {
			return false
		}
	}
	return true
}

func attemptsDiag(attempts []types.FetchAttempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		parts = append(parts, a.Source+": "+a.Diag)
	}
	return strings.Join(parts, " | ")
}
