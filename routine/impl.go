package routine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"oss.nandlabs.io/opspulse/errutils"
	"oss.nandlabs.io/opspulse/pool"
)

// defaultScheduler is the concrete Scheduler, generalized from
// chrono.defaultScheduler (chrono/impl.go): a single timer that fires a tick
// every tickInterval and is reset only after the tick returns, an
// atomic.CompareAndSwapInt32 running flag guarding Start/Stop, and the same
// join-before-return worker fan-out — rebuilt around
// TryLockRoutine/FinishScheduledRun/ReleaseLock instead of
// chrono.Storage's generic AcquireLock/ReleaseLock/SaveJob triad. Tick itself
// has no guard against concurrent calls; mutual exclusion rests on the lease.
type defaultScheduler struct {
	store   Store
	prober  Prober
	clock   Clock
	cfg     *Config
	metrics *Metrics

	tickInterval time.Duration

	mu      sync.Mutex
	running int32
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func (s *defaultScheduler) IsRunning() bool {
	return atomic.LoadInt32(&s.running) == 1
}

func (s *defaultScheduler) Start() error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrSchedulerRunning
	}

	s.mu.Lock()
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh := s.stopCh
	doneCh := s.doneCh
	s.mu.Unlock()

	go s.run(stopCh, doneCh)
	return nil
}

func (s *defaultScheduler) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrSchedulerStopped
	}
	s.mu.Lock()
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()
	<-doneCh
	return nil
}

func (s *defaultScheduler) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(s.tickInterval)
	defer timer.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-timer.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.tickInterval)
			if err := s.Tick(ctx); err != nil {
				logger.ErrorF("scheduler tick failed: %v", err)
			}
			cancel()
			timer.Reset(s.tickInterval)
		}
	}
}

// Tick implements the per-tick algorithm of spec.md §4.5 steps 1-4.
func (s *defaultScheduler) Tick(ctx context.Context) error {
	tickStart := time.Now().UTC()
	if s.metrics != nil {
		defer s.metrics.observeTick(tickStart)
	}
	now := tickStart
	dueCutoff := now.Add(s.cfg.DueSlack())

	candidates, err := s.store.ListDueRoutines(ctx, dueCutoff, s.cfg.SchedulerBatchLimit)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.observeDue(len(candidates))
	}
	if len(candidates) == 0 {
		return nil
	}

	locked := make([]*Routine, 0, len(candidates))
	contended := 0
	for _, candidate := range candidates {
		r, ok, lockErr := s.store.TryLockRoutine(ctx, candidate.WorkspaceID, candidate.ID, s.cfg.InstanceID, now, s.cfg.LockLease())
		if lockErr != nil {
			logger.ErrorF("try_lock_routine failed for routine %s: %v", candidate.ID, lockErr)
			continue
		}
		if !ok {
			contended++
			continue
		}
		locked = append(locked, r)
	}
	if s.metrics != nil {
		s.metrics.observeLocked(len(locked))
		s.metrics.observeContention(contended)
	}
	if len(locked) == 0 {
		return nil
	}

	tokens, err := pool.NewPool[struct{}](
		func() (struct{}, error) { return struct{}{}, nil },
		nil,
		0, s.cfg.MaxConcurrency, 3600,
	)
	if err != nil {
		return err
	}
	if err := tokens.Start(); err != nil {
		return err
	}
	defer tokens.Close()

	var wg sync.WaitGroup
	errs := errutils.NewMultiErr(nil)
	var errsMu sync.Mutex

	for _, r := range locked {
		if _, err := tokens.Checkout(); err != nil {
			logger.ErrorF("worker pool exhausted, skipping routine %s this tick: %v", r.ID, err)
			_ = s.store.ReleaseLock(ctx, r.WorkspaceID, r.ID, s.cfg.InstanceID)
			continue
		}
		wg.Add(1)
		go func(r *Routine) {
			defer wg.Done()
			defer tokens.Checkin(struct{}{})
			if runErr := s.runOneScheduled(ctx, r); runErr != nil {
				errsMu.Lock()
				errs.Add(runErr)
				errsMu.Unlock()
			}
		}(r)
	}
	wg.Wait()

	if errs.HasErrors() {
		logger.ErrorF("tick completed with errors: %v", errs)
	}
	return nil
}

// runOneScheduled implements spec.md §4.5 step 5 for a single leased routine.
func (s *defaultScheduler) runOneScheduled(ctx context.Context, r *Routine) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorF("panic while executing routine %s: %v", r.ID, rec)
			s.recordScheduleError(ctx, r, "scheduler_error:panic")
		}
		if releaseErr := s.store.ReleaseLock(ctx, r.WorkspaceID, r.ID, s.cfg.InstanceID); releaseErr != nil {
			logger.WarnF("release_lock failed for routine %s: %v", r.ID, releaseErr)
		}
	}()

	outcome := s.prober.Probe(ctx, r)
	nextRun := s.clock.Advance(r, outcome.FinishedAt)

	run := &RoutineRun{
		RoutineID:    r.ID,
		TriggeredBy:  TriggeredBySchedule,
		Status:       outcome.Status,
		HTTPStatus:   outcome.HTTPStatus,
		DurationMs:   outcome.DurationMs,
		ErrorMessage: outcome.ErrorMessage,
		StartedAt:    outcome.StartedAt,
		FinishedAt:   outcome.FinishedAt,
	}
	if _, insertErr := s.store.InsertRun(ctx, run); insertErr != nil {
		logger.ErrorF("insert_run failed for routine %s: %v", r.ID, insertErr)
	}
	if s.metrics != nil {
		s.metrics.observeRun(outcome.Status)
	}

	if finishErr := s.store.FinishScheduledRun(ctx, r.WorkspaceID, r.ID, s.cfg.InstanceID, outcome.FinishedAt, nextRun); finishErr != nil {
		logger.ErrorF("finish_scheduled_run failed for routine %s: %v", r.ID, finishErr)
		return finishErr
	}
	return nil
}

// recordScheduleError best-effort inserts a FAIL run for a routine that
// panicked mid-execution, per spec.md §4.5 step 5e.
func (s *defaultScheduler) recordScheduleError(ctx context.Context, r *Routine, message string) {
	now := time.Now().UTC()
	run := &RoutineRun{
		RoutineID:    r.ID,
		TriggeredBy:  TriggeredBySchedule,
		Status:       RunStatusFail,
		ErrorMessage: truncateMessage(message, ErrorMessageMaxLen),
		StartedAt:    now,
		FinishedAt:   now,
	}
	if _, err := s.store.InsertRun(ctx, run); err != nil {
		logger.ErrorF("failed to record scheduler error run for routine %s: %v", r.ID, err)
	}
}
