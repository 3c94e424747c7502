package refresh

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is used when a Scheduler is created with a non-positive
// interval.
const DefaultInterval = 10 * time.Minute

// Scheduler runs a single deferred callback after a fixed interval. At most
// one callback is pending at any time: arming replaces whatever was armed
// before. The Scheduler holds no auth state of its own.
type Scheduler struct {
	clock    clock.Clock
	interval time.Duration
	logger   zerolog.Logger

	mu         sync.Mutex
	timer      *clock.Timer
	generation uint64
}

type SchedulerOption func(*Scheduler)

// WithClock substitutes the clock used to create timers, typically a
// clock.Mock in tests.
func WithClock(c clock.Clock) SchedulerOption {
	return func(s *Scheduler) {
		s.clock = c
	}
}

func WithLogger(logger zerolog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func New(interval time.Duration, options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		interval: interval,
		logger:   log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	return s
}

// Arm cancels any pending callback and schedules fn to run once after the
// interval. fn runs on its own goroutine.
func (s *Scheduler) Arm(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.generation++
	gen := s.generation
	s.timer = s.clock.AfterFunc(s.interval, func() {
		s.mu.Lock()
		// A timer that fired while being replaced or cancelled must not run.
		if gen != s.generation {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()

		s.logger.Debug().Uint64("generation", gen).Msg("refresh timer fired")
		fn()
	})
	s.logger.Debug().Uint64("generation", gen).Dur("interval", s.interval).Msg("refresh timer armed")
}

// Cancel drops the pending callback, if any. Calling Cancel with nothing
// armed is a no-op.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return
	}
	s.stopLocked()
	s.generation++
	s.logger.Debug().Msg("refresh timer cancelled")
}

// Armed reports whether a callback is pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
