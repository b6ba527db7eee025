// Package scheduler runs the periodic housekeeping jobs of the worker process.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/postforge/postforge/internal/shared/goroutine"
	"github.com/postforge/postforge/internal/shared/logger"
)

const usageRolloverTimeout = 10 * time.Minute

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// RunObserver records the result of each run.
type RunObserver interface {
	ObserveUsageRollover(err error)
}

// SchedulerManager owns a single cron instance in UTC. Overlapping runs of
// the same job are skipped.
type SchedulerManager struct {
	cron        *cron.Cron
	logger      logger.Interface
	observer    RunObserver
	startupJobs []BatchJob

	started   bool
	startedMu sync.Mutex
}

func NewSchedulerManager(observer RunObserver, log logger.Interface) *SchedulerManager {
	cl := cronLogger{log: log}
	return &SchedulerManager{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:   log,
		observer: observer,
	}
}

// ========================================
// Usage Rollover (cron-based, default 00:05 UTC on the 1st)
// ========================================

// RegisterUsageRolloverJob schedules job at spec. With runOnStart the job also
// runs once in the background when Start is called.
func (m *SchedulerManager) RegisterUsageRolloverJob(spec string, job BatchJob, runOnStart bool) error {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), usageRolloverTimeout)
		defer cancel()
		m.processUsageRollover(ctx, job)
	}

	if _, err := m.cron.AddFunc(spec, run); err != nil {
		return fmt.Errorf("invalid usage rollover schedule %q: %w", spec, err)
	}

	if runOnStart {
		m.startupJobs = append(m.startupJobs, job)
	}

	m.logger.Infow("registered usage rollover job", "schedule", spec, "run_on_start", runOnStart)
	return nil
}

func (m *SchedulerManager) processUsageRollover(ctx context.Context, job BatchJob) {
	startTime := time.Now()

	created, err := job.Execute(ctx)
	if m.observer != nil {
		m.observer.ObserveUsageRollover(err)
	}
	if err != nil {
		m.logger.Errorw("usage rollover failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("usage rollover completed",
		"created", created,
		"duration", time.Since(startTime),
	)
}

func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}
	m.cron.Start()
	m.started = true
	m.logger.Infow("scheduler started", "jobs", len(m.cron.Entries()))

	for _, job := range m.startupJobs {
		m.RunNow(job)
	}
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (m *SchedulerManager) Stop(ctx context.Context) error {
	m.startedMu.Lock()
	if !m.started {
		m.startedMu.Unlock()
		return nil
	}
	m.started = false
	m.startedMu.Unlock()

	done := m.cron.Stop()
	select {
	case <-done.Done():
		m.logger.Infow("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// RunNow executes job immediately outside the schedule.
func (m *SchedulerManager) RunNow(job BatchJob) {
	goroutine.SafeGo(m.logger, "usage-rollover-manual", func() {
		ctx, cancel := context.WithTimeout(context.Background(), usageRolloverTimeout)
		defer cancel()
		m.processUsageRollover(ctx, job)
	})
}

type cronLogger struct {
	log logger.Interface
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
