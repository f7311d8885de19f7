package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Collector is the work a Scheduler runs each interval.
type Collector interface {
	CollectOnce(ctx context.Context) int
}

// Scheduler periodically runs a collection cycle.
type Scheduler struct {
	scheduler *gocron.Scheduler
	collector Collector
	interval  time.Duration
	log       *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(interval time.Duration, collector Collector, log *zap.SugaredLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		collector: collector,
		interval:  interval,
		log:       log,
	}
}

// Start runs a cycle immediately and then every interval until Stop is called.
// ctx is handed to every cycle; cancelling it aborts in-flight work.
// A cycle that outlasts the interval delays the next run rather than overlapping it.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).StartImmediately().SingletonMode().Do(func() {
		if ctx.Err() != nil {
			return
		}
		s.log.Debug("scheduler: running collection job")
		n := s.collector.CollectOnce(ctx)
		s.log.Debugw("scheduler: completed collection job", "recorded", n)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Infow("scheduler started", "interval", s.interval)
	return nil
}

// Stop stops scheduling further cycles. A cycle already running is not interrupted.
func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
		s.log.Info("scheduler stopped")
	}
}
