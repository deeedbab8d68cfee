package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CycleFunc is one check or monitor cycle.
type CycleFunc func(ctx context.Context) error

// ShiftScheduler runs check cycles on cron specs. A cycle that is still
// running when its next tick arrives causes that tick to be skipped, so two
// cycles of the same job never overlap.
type ShiftScheduler struct {
	cronEngine *cron.Cron
	logger     *logrus.Entry
	baseCtx    context.Context
	cancel     context.CancelFunc
}

func NewShiftScheduler(logger *logrus.Entry) *ShiftScheduler {
	cronLogger := cron.PrintfLogger(logger)
	ctx, cancel := context.WithCancel(context.Background())
	return &ShiftScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // Use server's local time for cron
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:  logger,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// AddCycle registers run under spec. Each invocation gets its own timeout
// derived from the scheduler's context, which Stop cancels.
func (s *ShiftScheduler) AddCycle(name, spec string, timeout time.Duration, run CycleFunc) error {
	_, err := s.cronEngine.AddFunc(spec, func() {
		s.runOnce(name, timeout, run)
	})
	if err != nil {
		return fmt.Errorf("could not add %s cron job with spec %q: %w", name, spec, err)
	}
	s.logger.WithFields(logrus.Fields{"job": name, "spec": spec}).Info("Scheduled cycle")
	return nil
}

func (s *ShiftScheduler) runOnce(name string, timeout time.Duration, run CycleFunc) {
	log := s.logger.WithField("job", name)
	log.Debug("Cron job triggered")

	ctx := s.baseCtx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := run(ctx); err != nil {
		log.WithError(err).Error("Cycle failed")
	}
}

func (s *ShiftScheduler) Start() {
	s.logger.Info("Starting shift scheduler...")
	s.cronEngine.Start()
}

// Stop prevents new cycles, cancels the running one and waits for it to return.
func (s *ShiftScheduler) Stop() {
	s.logger.Info("Stopping shift scheduler...")
	ctx := s.cronEngine.Stop()
	s.cancel()
	<-ctx.Done()
	s.logger.Info("Shift scheduler gracefully stopped.")
}
