package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is the unit of work run on every tick.
type JobFunc func(ctx context.Context) error

// OverlapPolicy decides what happens when a run is due while the previous one
// is still going.
type OverlapPolicy int

const (
	// AllowOverlap starts the new run regardless.
	AllowOverlap OverlapPolicy = iota
	// SkipIfRunning drops the new run.
	SkipIfRunning
	// DelayIfRunning starts the new run once the previous one returns.
	DelayIfRunning
)

// JobOptions configure a single job.
type JobOptions struct {
	Name          string
	Timeout       time.Duration
	OverlapPolicy OverlapPolicy
}

// Hooks observe job runs. Both are optional.
type Hooks struct {
	OnStart  func(name string)
	OnFinish func(name string, took time.Duration, err error)
}

// Config configures a Scheduler.
type Config struct {
	Logger *slog.Logger
	Hooks  Hooks
}

// Scheduler owns a cron runner and the context its jobs run under.
type Scheduler struct {
	cron   *cron.Cron
	log    *slog.Logger
	hooks  Hooks
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
	stopped bool
}

// New creates a stopped scheduler.
func New(cfg Config) *Scheduler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "scheduler"))
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLogger(cronLogger{log: log})),
		log:    log,
		hooks:  cfg.Hooks,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under schedule.
func (s *Scheduler) Add(schedule string, job JobFunc, opts JobOptions) (cron.EntryID, error) {
	if job == nil {
		return 0, fmt.Errorf("scheduler: nil job %q", opts.Name)
	}
	if opts.Name == "" {
		opts.Name = schedule
	}

	var wrappers []cron.JobWrapper
	switch opts.OverlapPolicy {
	case SkipIfRunning:
		wrappers = append(wrappers, cron.SkipIfStillRunning(cronLogger{log: s.log}))
	case DelayIfRunning:
		wrappers = append(wrappers, cron.DelayIfStillRunning(cronLogger{log: s.log}))
	}

	id, err := s.cron.AddJob(schedule, cron.NewChain(wrappers...).Then(cron.FuncJob(func() {
		s.run(opts, job)
	})))
	if err != nil {
		return 0, fmt.Errorf("scheduler: job %q: %w", opts.Name, err)
	}
	return id, nil
}

// Remove unregisters a job. Runs already in flight finish normally.
func (s *Scheduler) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

// Start begins firing jobs. Calling it twice, or after Stop, does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.stopped {
		return
	}
	s.running = true
	s.cron.Start()
}

// Stop cancels the job context and waits for running jobs until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.running = false
	s.mu.Unlock()

	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler has been started and not stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(opts JobOptions, job JobFunc) {
	ctx := s.ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if s.hooks.OnStart != nil {
		s.hooks.OnStart(opts.Name)
	}
	start := time.Now()

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		took := time.Since(start)
		if err != nil {
			s.log.Error("job failed",
				slog.String("job", opts.Name),
				slog.Duration("took", took),
				slog.Any("err", err))
		} else {
			s.log.Debug("job done", slog.String("job", opts.Name), slog.Duration("took", took))
		}
		if s.hooks.OnFinish != nil {
			s.hooks.OnFinish(opts.Name, took, err)
		}
	}()

	err = job(ctx)
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{slog.Any("err", err)}, keysAndValues...)...)
}
