package routine

import (
	"context"

	"oss.nandlabs.io/opspulse/uuid"
)

// ManualRunner executes a single routine synchronously on behalf of the
// REST surface's POST /routines/{id}/run endpoint (spec.md §4.4). It shares
// Prober and Store with the Scheduler but deliberately bypasses
// TryLockRoutine: a manual run is an ad hoc probe, not a scheduled slot, so
// it never touches lock fields or NextRunAt (spec.md §9, "Open question —
// manual-run and lease", resolved as documented behavior, not a bug).
type ManualRunner struct {
	store  Store
	prober Prober
}

// NewManualRunner returns a ManualRunner backed by store and prober.
func NewManualRunner(store Store, prober Prober) *ManualRunner {
	return &ManualRunner{store: store, prober: prober}
}

// Run loads the routine scoped to workspaceID (ErrRoutineNotFound if
// absent), probes it, inserts a MANUAL run record, and best-effort touches
// LastRunAt. It returns the inserted run even if TouchLastRun fails, since
// the run itself is the authoritative record of what happened.
func (m *ManualRunner) Run(ctx context.Context, workspaceID, routineID string) (*RoutineRun, error) {
	r, err := m.store.GetRoutine(ctx, workspaceID, routineID)
	if err != nil {
		return nil, err
	}

	outcome := m.prober.Probe(ctx, r)

	runID, err := uuid.V4()
	if err != nil {
		return nil, err
	}

	run := &RoutineRun{
		ID:           runID.String(),
		RoutineID:    r.ID,
		TriggeredBy:  TriggeredByManual,
		Status:       outcome.Status,
		HTTPStatus:   outcome.HTTPStatus,
		DurationMs:   outcome.DurationMs,
		ErrorMessage: outcome.ErrorMessage,
		StartedAt:    outcome.StartedAt,
		FinishedAt:   outcome.FinishedAt,
	}

	inserted, err := m.store.InsertRun(ctx, run)
	if err != nil {
		return nil, err
	}

	if err := m.store.TouchLastRun(ctx, workspaceID, routineID, outcome.FinishedAt); err != nil {
		logger.WarnF("manual run %s: failed to touch last_run_at for routine %s: %v", inserted.ID, routineID, err)
	}

	return inserted, nil
}
