// Package scheduler runs periodic background jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stwalsh4118/estatedesk/internal/logger"
	"github.com/stwalsh4118/estatedesk/internal/services"
)

// DefaultJobTimeout bounds a single lifecycle run.
const DefaultJobTimeout = 30 * time.Second

// LifecycleRunner advances promotion statuses.
type LifecycleRunner interface {
	RunLifecycle(ctx context.Context, now time.Time) (services.LifecycleResult, error)
}

// Scheduler runs the promotion lifecycle job.
type Scheduler struct {
	cron    *cron.Cron
	runner  LifecycleRunner
	log     *logger.Logger
	timeout time.Duration
	now     func() time.Time
}

// New builds a scheduler for schedule, a standard five-field cron spec or a
// descriptor such as "@every 1m". Overlapping runs are skipped and panics are
// recovered.
func New(runner LifecycleRunner, schedule string, log *logger.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		), cron.WithLogger(cl)),
		runner:  runner,
		log:     log,
		timeout: DefaultJobTimeout,
		now:     time.Now,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid promotion schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started", map[string]interface{}{
		"jobs": len(s.cron.Entries()),
	})
}

// Stop stops scheduling and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.log.Info("Scheduler stopped", nil)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce runs the lifecycle job immediately.
func (s *Scheduler) RunOnce(ctx context.Context) (services.LifecycleResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.runner.RunLifecycle(ctx, s.now().UTC())
}

func (s *Scheduler) run() {
	start := time.Now()
	result, err := s.RunOnce(context.Background())
	if err != nil {
		s.log.Error("Promotion lifecycle run failed", err, map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return
	}
	s.log.Debug("Promotion lifecycle run finished", map[string]interface{}{
		"activated":   result.Activated,
		"completed":   result.Completed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, err, kvFields(keysAndValues))
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
