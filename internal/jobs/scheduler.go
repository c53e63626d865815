package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner is a job the scheduler can fire.
type Runner interface {
	Run(ctx context.Context) (*RetentionResult, error)
}

type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// StartScheduler runs job on spec (standard cron syntax or descriptors such
// as @daily). Overlapping runs are skipped.
func StartScheduler(spec string, job Runner, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		ctx:     ctx,
		cancel:  cancel,
		timeout: 10 * time.Minute,
	}

	_, err := s.cron.AddFunc(spec, func() {
		runCtx, done := context.WithTimeout(s.ctx, s.timeout)
		defer done()
		if _, err := job.Run(runCtx); err != nil {
			logger.Error("scheduled retention run failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	s.cron.Start()
	logger.Info("retention scheduler started", slog.String("schedule", spec))
	return s, nil
}

// Stop cancels an in-flight run and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
