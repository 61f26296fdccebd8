// Package memory implements routine.Store over in-process maps, grounded on
// chrono.InMemoryStorage (chrono/inmemory_storage.go). It is suitable for
// single-instance deployments, demos and tests; it provides no cross-process
// locking guarantee beyond a single Go process's own mutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"oss.nandlabs.io/opspulse/routine"
	"oss.nandlabs.io/opspulse/uuid"
)

type workspace struct {
	id      string
	ownerID string
}

// Store is an in-memory routine.Store implementation.
type Store struct {
	mu          sync.Mutex
	workspaces  map[string]*workspace // ownerID -> workspace
	routines    map[string]*routine.Routine
	runs        map[string][]*routine.RoutineRun // routineID -> runs, newest first
}

// New returns an empty, ready-to-use in-memory Store.
func New() *Store {
	return &Store{
		workspaces: make(map[string]*workspace),
		routines:   make(map[string]*routine.Routine),
		runs:       make(map[string][]*routine.RoutineRun),
	}
}

func copyRoutine(r *routine.Routine) *routine.Routine {
	cp := *r
	if r.LockUntil != nil {
		t := *r.LockUntil
		cp.LockUntil = &t
	}
	if r.LastRunAt != nil {
		t := *r.LastRunAt
		cp.LastRunAt = &t
	}
	cp.HeadersJSON = make(map[string]string, len(r.HeadersJSON))
	for k, v := range r.HeadersJSON {
		cp.HeadersJSON[k] = v
	}
	return &cp
}

func (s *Store) GetOrCreateWorkspace(_ context.Context, ownerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[ownerID]; ok {
		return ws.id, nil
	}
	id, err := uuid.V4()
	if err != nil {
		return "", err
	}
	s.workspaces[ownerID] = &workspace{id: id.String(), ownerID: ownerID}
	return id.String(), nil
}

func (s *Store) InsertRoutine(_ context.Context, r *routine.Routine) (*routine.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		id, err := uuid.V4()
		if err != nil {
			return nil, err
		}
		r.ID = id.String()
	}
	now := time.Now().UTC()
	stored := copyRoutine(r)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.routines[stored.ID] = stored
	return copyRoutine(stored), nil
}

func (s *Store) ListRoutines(_ context.Context, workspaceID string, limit int) ([]*routine.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*routine.Routine
	for _, r := range s.routines {
		if r.WorkspaceID == workspaceID {
			out = append(out, copyRoutine(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetRoutine(_ context.Context, workspaceID, routineID string) (*routine.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.routines[routineID]
	if !ok || r.WorkspaceID != workspaceID {
		return nil, routine.ErrRoutineNotFound
	}
	return copyRoutine(r), nil
}

func (s *Store) UpdateRoutine(_ context.Context, workspaceID, routineID string, patch *routine.RoutinePatch) (*routine.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.routines[routineID]
	if !ok || r.WorkspaceID != workspaceID {
		return nil, routine.ErrRoutineNotFound
	}
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.IntervalMinutes != nil {
		r.IntervalMinutes = *patch.IntervalMinutes
	}
	if patch.EndpointURL != nil {
		r.EndpointURL = *patch.EndpointURL
	}
	if patch.HTTPMethod != nil {
		r.HTTPMethod = *patch.HTTPMethod
	}
	if patch.HeadersJSON != nil {
		r.HeadersJSON = make(map[string]string, len(patch.HeadersJSON))
		for k, v := range patch.HeadersJSON {
			r.HeadersJSON[k] = v
		}
	}
	if patch.AuthMode != nil {
		r.AuthMode = *patch.AuthMode
	}
	if patch.SecretRef != nil {
		r.SecretRef = *patch.SecretRef
	}
	if patch.IsActive != nil {
		r.IsActive = *patch.IsActive
	}
	if patch.NextRunAt != nil {
		r.NextRunAt = *patch.NextRunAt
	}
	r.UpdatedAt = time.Now().UTC()
	return copyRoutine(r), nil
}

func (s *Store) DeleteRoutine(_ context.Context, workspaceID, routineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.routines[routineID]
	if !ok || r.WorkspaceID != workspaceID {
		return routine.ErrRoutineNotFound
	}
	delete(s.routines, routineID)
	delete(s.runs, routineID)
	return nil
}

func (s *Store) InsertRun(_ context.Context, run *routine.RoutineRun) (*routine.RoutineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		id, err := uuid.V4()
		if err != nil {
			return nil, err
		}
		run.ID = id.String()
	}
	cp := *run
	cp.CreatedAt = time.Now().UTC()
	s.runs[cp.RoutineID] = append([]*routine.RoutineRun{&cp}, s.runs[cp.RoutineID]...)
	out := cp
	return &out, nil
}

func (s *Store) ListRuns(_ context.Context, routineID string, limit int) ([]*routine.RoutineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := s.runs[routineID]
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	out := make([]*routine.RoutineRun, len(runs))
	for i, r := range runs {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

func (s *Store) TouchLastRun(_ context.Context, workspaceID, routineID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.routines[routineID]
	if !ok || r.WorkspaceID != workspaceID {
		return routine.ErrRoutineNotFound
	}
	t := at
	r.LastRunAt = &t
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) ListDueRoutines(_ context.Context, cutoff time.Time, limit int) ([]*routine.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*routine.Routine
	for _, r := range s.routines {
		if !r.IsActive {
			continue
		}
		if r.NextRunAt.IsZero() || r.NextRunAt.After(cutoff) {
			continue
		}
		if r.LockUntil != nil && r.LockUntil.After(cutoff) {
			continue
		}
		out = append(out, copyRoutine(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextRunAt.Before(out[j].NextRunAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TryLockRoutine implements the conditional-update lease of spec.md §4.1.
// In-process, the package mutex already serializes this check-and-set, so
// the read-after-write fallback the spec mandates for unreliable backends is
// unnecessary here — but the return shape matches routine.Store exactly so
// swapping in the Postgres adapter changes no caller.
func (s *Store) TryLockRoutine(_ context.Context, workspaceID, routineID, ownerID string, now time.Time, leaseTTL time.Duration) (*routine.Routine, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.routines[routineID]
	if !ok || r.WorkspaceID != workspaceID {
		return nil, false, routine.ErrRoutineNotFound
	}
	if r.LockUntil != nil && r.LockUntil.After(now) && r.LockedBy != ownerID {
		return nil, false, nil
	}
	until := now.Add(leaseTTL)
	r.LockUntil = &until
	r.LockedBy = ownerID
	r.UpdatedAt = now
	return copyRoutine(r), true, nil
}

func (s *Store) FinishScheduledRun(_ context.Context, workspaceID, routineID, ownerID string, lastRunAt, nextRunAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.routines[routineID]
	if !ok || r.WorkspaceID != workspaceID || r.LockedBy != ownerID {
		return nil
	}
	r.LockUntil = nil
	r.LockedBy = ""
	t := lastRunAt
	r.LastRunAt = &t
	r.NextRunAt = nextRunAt
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) ReleaseLock(_ context.Context, workspaceID, routineID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.routines[routineID]
	if !ok || r.WorkspaceID != workspaceID || r.LockedBy != ownerID {
		return nil
	}
	r.LockUntil = nil
	r.LockedBy = ""
	return nil
}

func (s *Store) Close() error {
	return nil
}

var _ routine.Store = (*Store)(nil)
