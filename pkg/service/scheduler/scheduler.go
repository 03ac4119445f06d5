package scheduler

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/agentry-lab/mnemosyne/pkg/utils/errutil"
	"github.com/agentry-lab/mnemosyne/pkg/utils/logging"
)

// DefaultLockKey is the advisory lock key shared by all replicas running
// the memory extraction cycle.
const DefaultLockKey = "memory-extraction"

// DefaultInterval is the default spacing between extraction cycles.
const DefaultInterval = 5 * time.Minute

// CycleFunc runs one extraction cycle on the replica that won the lock.
type CycleFunc func(ctx context.Context) error

// Scheduler fires a cycle at wall-clock-aligned instants. Every replica in
// the fleet runs a Scheduler; the advisory mutex elects one of them per
// tick and the rest skip silently.
type Scheduler struct {
	mutex    interfaces.AdvisoryMutex
	cycle    CycleFunc
	interval time.Duration
	lockKey  string
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithInterval overrides the cycle interval
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.interval = d
	}
}

// WithLockKey overrides the advisory lock key
func WithLockKey(key string) Option {
	return func(s *Scheduler) {
		s.lockKey = key
	}
}

// New creates a Scheduler for the given cycle function
func New(mutex interfaces.AdvisoryMutex, cycle CycleFunc, opts ...Option) (*Scheduler, error) {
	if mutex == nil {
		return nil, goerr.New("advisory mutex is required")
	}
	if cycle == nil {
		return nil, goerr.New("cycle function is required")
	}

	s := &Scheduler{
		mutex:    mutex,
		cycle:    cycle,
		interval: DefaultInterval,
		lockKey:  DefaultLockKey,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.interval <= 0 {
		return nil, goerr.New("scheduler interval must be positive", goerr.V("interval", s.interval))
	}

	return s, nil
}

// Start begins the scheduling loop in a background goroutine. It does not
// block server startup; the first cycle fires at the next aligned instant.
func (s *Scheduler) Start(ctx context.Context) error {
	logging.Default().Info("extraction scheduler starting",
		"interval", s.interval.String(),
		"lock_key", s.lockKey,
		"first_fire", NextAlignedTime(time.Now(), s.interval).Format(time.RFC3339))

	go s.run(ctx)

	return nil
}

// Stop signals the scheduler to stop and waits for the loop to exit. A
// cycle already in flight runs to completion.
func (s *Scheduler) Stop() {
	logging.Default().Info("extraction scheduler stopping")
	close(s.stopCh)
	<-s.doneCh
	logging.Default().Info("extraction scheduler stopped")
}

// Alive reports whether the scheduling loop is still running. Used as a
// readiness probe.
func (s *Scheduler) Alive() error {
	select {
	case <-s.doneCh:
		return goerr.New("scheduler loop has exited")
	default:
		return nil
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	for {
		wait := time.Until(NextAlignedTime(time.Now(), s.interval))
		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
			s.fire(ctx)

		case <-s.stopCh:
			timer.Stop()
			logging.Default().Info("extraction scheduler received stop signal")
			return

		case <-ctx.Done():
			timer.Stop()
			logging.Default().Info("extraction scheduler context cancelled")
			return
		}
	}
}

// fire attempts to win the fleet-wide lock and, if it does, runs one cycle.
// Losing the lock is the normal case on all but one replica and is logged
// at debug only.
func (s *Scheduler) fire(ctx context.Context) {
	acquired, err := s.mutex.TryLock(ctx, s.lockKey)
	if err != nil {
		errutil.Handle(ctx, err, "failed to acquire extraction lock")
		return
	}
	if !acquired {
		logging.Default().Debug("extraction lock held elsewhere, skipping cycle",
			"lock_key", s.lockKey)
		return
	}
	defer func() {
		if err := s.mutex.Unlock(ctx, s.lockKey); err != nil {
			errutil.Handle(ctx, err, "failed to release extraction lock")
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			errutil.Handle(ctx, goerr.New("extraction cycle panicked",
				goerr.V("panic", r),
				goerr.V("stack", string(debug.Stack()))),
				"extraction cycle panicked")
		}
	}()

	startedAt := time.Now()
	if err := s.cycle(ctx); err != nil {
		errutil.Handle(ctx, err, "extraction cycle failed")
		return
	}

	logging.Default().Info("extraction cycle completed",
		"duration", time.Since(startedAt).String())
}
