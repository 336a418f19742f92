package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// HistoryRefresher re-reads and repaints the search history.
type HistoryRefresher interface {
	RefreshHistory(ctx context.Context) error
}

// Scheduler periodically resyncs the history region with the weather proxy,
// so entries added or removed elsewhere show up without a page action.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    HistoryRefresher
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

// New creates a new Scheduler. timeout bounds each refresh.
func New(target HistoryRefresher, interval, timeout time.Duration, logger *zap.SugaredLogger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the resync job and starts the underlying scheduler.
// A non-positive interval leaves the scheduler idle.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Infow("scheduler: history resync disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Infow("scheduler: history resync started", "interval", s.interval.String())
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.target.RefreshHistory(ctx); err != nil {
		s.logger.Warnw("scheduler: history resync failed", "error", err)
		return
	}
	s.logger.Debugw("scheduler: history resynced")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}
