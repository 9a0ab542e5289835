package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler re-ingests the source directory on a cron schedule.
type Scheduler struct {
	pipeline *Pipeline
	dir      string
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
	last     *BatchReport
}

// NewScheduler creates a scheduler that ingests dir through p whenever the
// cron expression schedule fires.
func NewScheduler(p *Pipeline, dir, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		pipeline: p,
		dir:      dir,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "ingestion.scheduler"),
	}
}

// Start schedules the re-ingestion job. Common expressions:
//   - "0 2 * * *"    - Daily at 2 AM
//   - "*/30 * * * *" - Every 30 minutes
//
// An empty schedule leaves the scheduler idle. The scheduler stops when ctx
// is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("ingestion schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunNow(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule ingestion: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("ingestion scheduler started", "schedule", s.schedule, "dir", s.dir)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunNow ingests the directory immediately and records the report.
func (s *Scheduler) RunNow(ctx context.Context) (BatchReport, error) {
	s.logger.Info("starting scheduled ingestion", "dir", s.dir)

	report, err := s.pipeline.IngestDirectory(ctx, s.dir)
	if err != nil {
		s.logger.Error("scheduled ingestion failed", "error", err)
		return report, err
	}

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	if report.NeedsReingest() {
		s.logger.Warn("scheduled ingestion completed with failures",
			"failed", report.Failed,
			"chunks_skipped", report.ChunksSkipped,
		)
	} else {
		s.logger.Info("scheduled ingestion completed",
			"documents", report.Documents,
			"chunks_indexed", report.ChunksIndexed,
		)
	}
	return report, nil
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopped := s.cron.Stop()
	s.mu.Unlock()

	// RunNow takes the lock to record its report.
	<-stopped.Done()
	s.logger.Info("ingestion scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled ingestion time, or nil when nothing is
// scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

// LastReport returns the report of the most recent completed run.
func (s *Scheduler) LastReport() (BatchReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return BatchReport{}, false
	}
	return *s.last, true
}
