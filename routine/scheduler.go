package routine

import (
	"context"
	"errors"
	"time"
)

// Errors returned by Scheduler, grounded on chrono/scheduler.go's own
// sentinel-error convention.
var (
	ErrSchedulerRunning = errors.New("routine: scheduler already running")
	ErrSchedulerStopped = errors.New("routine: scheduler not running")
)

// Scheduler runs the tick loop described in spec.md §4.5: on each tick it
// lists due routines, leases as many as it can, fans execution out across a
// bounded worker pool, and finalizes each run before the tick returns.
type Scheduler interface {
	// Start begins ticking on its own goroutine. Returns ErrSchedulerRunning
	// if already running.
	Start() error
	// Stop signals the tick loop to exit and waits for any in-flight tick to
	// finish. Returns ErrSchedulerStopped if not running.
	Stop() error
	// IsRunning reports whether the tick loop is active.
	IsRunning() bool
	// Tick runs exactly one iteration of the scheduling algorithm
	// synchronously; exposed for tests and for callers that drive ticks from
	// their own timer instead of Start.
	Tick(ctx context.Context) error
}

// Option configures a Scheduler at construction time, following the
// functional-options convention established by chrono.Option
// (chrono/scheduler.go).
type Option func(*defaultScheduler)

// WithClock overrides the ScheduleClock implementation (default NewClock()).
func WithClock(c Clock) Option {
	return func(s *defaultScheduler) { s.clock = c }
}

// WithTickInterval overrides the poll cadence between ticks when running via Start.
func WithTickInterval(d time.Duration) Option {
	return func(s *defaultScheduler) { s.tickInterval = d }
}

// WithMetrics attaches Prometheus instrumentation to the tick loop. Without
// this option the scheduler runs uninstrumented.
func WithMetrics(m *Metrics) Option {
	return func(s *defaultScheduler) { s.metrics = m }
}

// New constructs a Scheduler over store and prober, configured by cfg.
func New(store Store, prober Prober, cfg *Config, opts ...Option) Scheduler {
	s := &defaultScheduler{
		store:        store,
		prober:       prober,
		cfg:          cfg,
		clock:        NewClock(),
		tickInterval: cfg.TickInterval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	if s.tickInterval <= 0 {
		s.tickInterval = 5 * time.Minute
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
