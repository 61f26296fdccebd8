package memory

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"oss.nandlabs.io/opspulse/routine"
)

func newRoutine(wsID string) *routine.Routine {
	return &routine.Routine{
		WorkspaceID:     wsID,
		Name:            "probe",
		IntervalMinutes: 5,
		EndpointURL:     "https://example.com",
		HTTPMethod:      http.MethodGet,
		AuthMode:        routine.AuthModeNone,
		IsActive:        true,
		NextRunAt:       time.Now().UTC().Add(-time.Minute),
	}
}

func TestStore_GetOrCreateWorkspace_IsIdempotentPerOwner(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, err := s.GetOrCreateWorkspace(ctx, "owner-a")
	if err != nil {
		t.Fatalf("GetOrCreateWorkspace: %v", err)
	}
	id2, err := s.GetOrCreateWorkspace(ctx, "owner-a")
	if err != nil {
		t.Fatalf("GetOrCreateWorkspace: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("workspace ids = %q, %q, want identical for the same owner", id1, id2)
	}

	id3, err := s.GetOrCreateWorkspace(ctx, "owner-b")
	if err != nil {
		t.Fatalf("GetOrCreateWorkspace: %v", err)
	}
	if id3 == id1 {
		t.Fatalf("different owners got the same workspace id %q", id3)
	}
}

func TestStore_InsertGetUpdateDeleteRoutine(t *testing.T) {
	s := New()
	ctx := context.Background()
	wsID, _ := s.GetOrCreateWorkspace(ctx, "owner")

	created, err := s.InsertRoutine(ctx, newRoutine(wsID))
	if err != nil {
		t.Fatalf("InsertRoutine: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("InsertRoutine did not assign an id")
	}

	got, err := s.GetRoutine(ctx, wsID, created.ID)
	if err != nil {
		t.Fatalf("GetRoutine: %v", err)
	}
	if got.Name != "probe" {
		t.Fatalf("Name = %q, want probe", got.Name)
	}

	newName := "renamed"
	updated, err := s.UpdateRoutine(ctx, wsID, created.ID, &routine.RoutinePatch{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateRoutine: %v", err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("Name after update = %q, want renamed", updated.Name)
	}

	if err := s.DeleteRoutine(ctx, wsID, created.ID); err != nil {
		t.Fatalf("DeleteRoutine: %v", err)
	}
	if _, err := s.GetRoutine(ctx, wsID, created.ID); !errors.Is(err, routine.ErrRoutineNotFound) {
		t.Fatalf("GetRoutine after delete error = %v, want ErrRoutineNotFound", err)
	}
}

func TestStore_GetRoutine_WrongWorkspaceIsNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()
	wsA, _ := s.GetOrCreateWorkspace(ctx, "owner-a")
	wsB, _ := s.GetOrCreateWorkspace(ctx, "owner-b")

	created, err := s.InsertRoutine(ctx, newRoutine(wsA))
	if err != nil {
		t.Fatalf("InsertRoutine: %v", err)
	}

	if _, err := s.GetRoutine(ctx, wsB, created.ID); !errors.Is(err, routine.ErrRoutineNotFound) {
		t.Fatalf("GetRoutine across workspaces error = %v, want ErrRoutineNotFound", err)
	}
}

func TestStore_TryLockRoutine_SecondInstanceLosesRace(t *testing.T) {
	s := New()
	ctx := context.Background()
	wsID, _ := s.GetOrCreateWorkspace(ctx, "owner")
	created, _ := s.InsertRoutine(ctx, newRoutine(wsID))

	now := time.Now().UTC()
	_, ok, err := s.TryLockRoutine(ctx, wsID, created.ID, "instance-a", now, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first TryLockRoutine: ok=%v err=%v", ok, err)
	}

	_, ok, err = s.TryLockRoutine(ctx, wsID, created.ID, "instance-b", now, time.Minute)
	if err != nil {
		t.Fatalf("second TryLockRoutine error = %v", err)
	}
	if ok {
		t.Fatalf("second TryLockRoutine succeeded, want contention")
	}
}

func TestStore_TryLockRoutine_ExpiredLeaseCanBeReacquired(t *testing.T) {
	s := New()
	ctx := context.Background()
	wsID, _ := s.GetOrCreateWorkspace(ctx, "owner")
	created, _ := s.InsertRoutine(ctx, newRoutine(wsID))

	past := time.Now().UTC().Add(-time.Hour)
	if _, ok, err := s.TryLockRoutine(ctx, wsID, created.ID, "instance-a", past, time.Millisecond); err != nil || !ok {
		t.Fatalf("first TryLockRoutine: ok=%v err=%v", ok, err)
	}

	now := time.Now().UTC()
	if _, ok, err := s.TryLockRoutine(ctx, wsID, created.ID, "instance-b", now, time.Minute); err != nil || !ok {
		t.Fatalf("TryLockRoutine after lease expiry: ok=%v err=%v, want reacquisition to succeed", ok, err)
	}
}

func TestStore_FinishScheduledRun_ReleasesLockAndAdvancesSchedule(t *testing.T) {
	s := New()
	ctx := context.Background()
	wsID, _ := s.GetOrCreateWorkspace(ctx, "owner")
	created, _ := s.InsertRoutine(ctx, newRoutine(wsID))

	now := time.Now().UTC()
	if _, ok, err := s.TryLockRoutine(ctx, wsID, created.ID, "instance-a", now, time.Minute); err != nil || !ok {
		t.Fatalf("TryLockRoutine: ok=%v err=%v", ok, err)
	}

	next := now.Add(5 * time.Minute)
	if err := s.FinishScheduledRun(ctx, wsID, created.ID, "instance-a", now, next); err != nil {
		t.Fatalf("FinishScheduledRun: %v", err)
	}

	got, err := s.GetRoutine(ctx, wsID, created.ID)
	if err != nil {
		t.Fatalf("GetRoutine: %v", err)
	}
	if got.LockUntil != nil {
		t.Fatalf("LockUntil = %v, want nil after finish", got.LockUntil)
	}
	if !got.NextRunAt.Equal(next) {
		t.Fatalf("NextRunAt = %v, want %v", got.NextRunAt, next)
	}
	if got.LastRunAt == nil || !got.LastRunAt.Equal(now) {
		t.Fatalf("LastRunAt = %v, want %v", got.LastRunAt, now)
	}
}

func TestStore_ListDueRoutines_ExcludesInactiveAndLocked(t *testing.T) {
	s := New()
	ctx := context.Background()
	wsID, _ := s.GetOrCreateWorkspace(ctx, "owner")

	due := newRoutine(wsID)
	due.NextRunAt = time.Now().UTC().Add(-time.Minute)
	createdDue, _ := s.InsertRoutine(ctx, due)

	inactive := newRoutine(wsID)
	inactive.NextRunAt = time.Now().UTC().Add(-time.Minute)
	inactive.IsActive = false
	s.InsertRoutine(ctx, inactive)

	future := newRoutine(wsID)
	future.NextRunAt = time.Now().UTC().Add(time.Hour)
	s.InsertRoutine(ctx, future)

	locked := newRoutine(wsID)
	locked.NextRunAt = time.Now().UTC().Add(-time.Minute)
	createdLocked, _ := s.InsertRoutine(ctx, locked)
	if _, ok, err := s.TryLockRoutine(ctx, wsID, createdLocked.ID, "instance-a", time.Now().UTC(), time.Hour); err != nil || !ok {
		t.Fatalf("TryLockRoutine setup: ok=%v err=%v", ok, err)
	}

	cutoff := time.Now().UTC()
	out, err := s.ListDueRoutines(ctx, cutoff, 10)
	if err != nil {
		t.Fatalf("ListDueRoutines: %v", err)
	}
	if len(out) != 1 || out[0].ID != createdDue.ID {
		t.Fatalf("ListDueRoutines = %v, want only %q", out, createdDue.ID)
	}
}

func TestStore_ListRuns_NewestFirstAndLimited(t *testing.T) {
	s := New()
	ctx := context.Background()
	wsID, _ := s.GetOrCreateWorkspace(ctx, "owner")
	created, _ := s.InsertRoutine(ctx, newRoutine(wsID))

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := s.InsertRun(ctx, &routine.RoutineRun{RoutineID: created.ID, Status: routine.RunStatusSuccess})
		if err != nil {
			t.Fatalf("InsertRun: %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := s.ListRuns(ctx, created.ID, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2 (limited)", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("ListRuns order = %q, %q, want newest first %q, %q", runs[0].ID, runs[1].ID, ids[2], ids[1])
	}
}
