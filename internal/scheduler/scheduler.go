// Package scheduler triggers posting cycles on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"timetable_bot/internal/model"
)

// Runner executes one posting cycle.
type Runner interface {
	Run(ctx context.Context, mode model.Mode) (bool, error)
}

// Scheduler runs posting cycles on cron schedules. Cycles never overlap,
// even across modes.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	log    *slog.Logger

	mu  sync.Mutex
	ctx context.Context
}

// New creates a Scheduler whose specs are evaluated in loc.
func New(runner Runner, loc *time.Location, log *slog.Logger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		log:    log,
		ctx:    context.Background(),
	}
}

// Add schedules mode on a standard five-field cron spec.
func (s *Scheduler) Add(mode model.Mode, spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(s.ctx, mode) }); err != nil {
		return fmt.Errorf("schedule %s %q: %w", mode, spec, err)
	}
	s.log.Info("scheduled", "mode", mode, "spec", spec)
	return nil
}

// Run starts the schedules and blocks until ctx is cancelled, then waits
// for a running cycle to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}

// RunOnce performs one cycle for mode and logs the outcome. It reports
// whether a message was sent.
func (s *Scheduler) RunOnce(ctx context.Context, mode model.Mode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}
	posted, err := s.runner.Run(ctx, mode)
	if err != nil {
		s.log.Error("posting cycle failed", "mode", mode, "error", err)
		return false
	}
	return posted
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
