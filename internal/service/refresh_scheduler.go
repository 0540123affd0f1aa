package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/training-admin-api/pkg/jobs"
)

const refreshJobKey = "analytics.refresh"

type analyticsRefresher interface {
	Invalidate(ctx context.Context, entity string) error
	Warm(ctx context.Context) error
}

// RefreshScheduler periodically drops cached analytics and re-warms the
// default summary. Cron ticks only enqueue; the queue worker does the work,
// so overlapping ticks collapse into one refresh.
type RefreshScheduler struct {
	cron      *cron.Cron
	queue     *jobs.Queue
	analytics analyticsRefresher
	timeout   time.Duration
	logger    *zap.Logger
}

// NewRefreshScheduler parses schedule (standard five-field cron syntax or
// descriptors such as @hourly) in loc.
func NewRefreshScheduler(schedule string, loc *time.Location, analytics analyticsRefresher, timeout time.Duration, logger *zap.Logger) (*RefreshScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	s := &RefreshScheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		analytics: analytics,
		timeout:   timeout,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("analytics-refresh", s.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 2,
		MaxRetries: 2,
		RetryDelay: 10 * time.Second,
		Logger:     logger,
	})
	if _, err := s.cron.AddFunc(schedule, s.Trigger); err != nil {
		return nil, fmt.Errorf("parse refresh schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start launches the queue and the cron loop.
func (s *RefreshScheduler) Start(ctx context.Context) {
	s.queue.Start(ctx)
	s.cron.Start()
	s.logger.Info("analytics refresh scheduler started")
}

// Stop halts the cron loop, waits for a running tick, then drains the queue.
func (s *RefreshScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.queue.Stop()
}

// Trigger requests a refresh outside the schedule.
func (s *RefreshScheduler) Trigger() {
	queued, err := s.queue.Enqueue(jobs.Job{Key: refreshJobKey})
	if err != nil {
		s.logger.Warn("analytics refresh not queued", zap.Error(err))
		return
	}
	if !queued {
		s.logger.Debug("analytics refresh already pending")
	}
}

func (s *RefreshScheduler) handle(ctx context.Context, job jobs.Job) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.analytics.Invalidate(ctx, ""); err != nil {
		return err
	}
	if err := s.analytics.Warm(ctx); err != nil {
		return err
	}
	s.logger.Info("analytics cache refreshed", zap.Int("attempt", job.Attempt), zap.Duration("took", time.Since(start)))
	return nil
}
