// Package postgres implements routine.Store directly against PostgreSQL via
// pgx/v5, for multi-instance production deployments where TryLockRoutine's
// conditional update must be atomic across processes. Grounded on
// other_examples/.../ErlanBelekov-dist-job-scheduler/internal/infrastructure/postgres/schedule_repo.go
// for connection-pool usage, query shape and RETURNING-based scans; the
// lease predicate itself follows spec.md §4.1's conditional-update contract
// rather than that file's FOR UPDATE SKIP LOCKED claim-and-fire, since
// opspulse leases one row at a time instead of claiming a batch inside a
// single transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"oss.nandlabs.io/opspulse/routine"
)

// Store is a pgx/v5-backed routine.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pgxpool.Pool. Store.Close closes that pool, so a
// caller that shares the pool elsewhere must not call Store.Close while it
// still uses the pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool against dsn, grounded on the same
// pgxpool.New(ctx, dsn) construction the teacher's pack example uses.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return &Store{pool: pool}, nil
}

func newID() string {
	return uuid.NewString()
}

func (s *Store) GetOrCreateWorkspace(ctx context.Context, ownerID string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO workspaces (id, owner_id) VALUES ($1, $2)
		 ON CONFLICT (owner_id) DO UPDATE SET owner_id = EXCLUDED.owner_id
		 RETURNING id`,
		newID(), ownerID,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("postgres: get_or_create_workspace: %w", err)
	}
	return id, nil
}

func (s *Store) InsertRoutine(ctx context.Context, r *routine.Routine) (*routine.Routine, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO routines (
			id, workspace_id, name, kind, interval_minutes, endpoint_url,
			http_method, headers_json, auth_mode, secret_ref, is_active,
			next_run_at, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW(),NOW())
		RETURNING id, workspace_id, name, kind, interval_minutes, endpoint_url,
		          http_method, headers_json, auth_mode, secret_ref, is_active,
		          next_run_at, last_run_at, lock_until, locked_by, created_at, updated_at`,
		r.ID, r.WorkspaceID, r.Name, r.Kind, r.IntervalMinutes, r.EndpointURL,
		r.HTTPMethod, r.HeadersJSON, r.AuthMode, r.SecretRef, r.IsActive, r.NextRunAt,
	)
	return scanRoutine(row)
}

func (s *Store) ListRoutines(ctx context.Context, workspaceID string, limit int) ([]*routine.Routine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, workspace_id, name, kind, interval_minutes, endpoint_url,
		       http_method, headers_json, auth_mode, secret_ref, is_active,
		       next_run_at, last_run_at, lock_until, locked_by, created_at, updated_at
		FROM routines WHERE workspace_id = $1
		ORDER BY created_at DESC LIMIT $2`, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list_routines: %w", err)
	}
	defer rows.Close()

	var out []*routine.Routine
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetRoutine(ctx context.Context, workspaceID, routineID string) (*routine.Routine, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, workspace_id, name, kind, interval_minutes, endpoint_url,
		       http_method, headers_json, auth_mode, secret_ref, is_active,
		       next_run_at, last_run_at, lock_until, locked_by, created_at, updated_at
		FROM routines WHERE id = $1 AND workspace_id = $2`, routineID, workspaceID)
	return scanRoutine(row)
}

func (s *Store) UpdateRoutine(ctx context.Context, workspaceID, routineID string, patch *routine.RoutinePatch) (*routine.Routine, error) {
	existing, err := s.GetRoutine(ctx, workspaceID, routineID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.IntervalMinutes != nil {
		existing.IntervalMinutes = *patch.IntervalMinutes
	}
	if patch.EndpointURL != nil {
		existing.EndpointURL = *patch.EndpointURL
	}
	if patch.HTTPMethod != nil {
		existing.HTTPMethod = *patch.HTTPMethod
	}
	if patch.HeadersJSON != nil {
		existing.HeadersJSON = patch.HeadersJSON
	}
	if patch.AuthMode != nil {
		existing.AuthMode = *patch.AuthMode
	}
	if patch.SecretRef != nil {
		existing.SecretRef = *patch.SecretRef
	}
	if patch.IsActive != nil {
		existing.IsActive = *patch.IsActive
	}
	if patch.NextRunAt != nil {
		existing.NextRunAt = *patch.NextRunAt
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE routines SET name=$3, interval_minutes=$4, endpoint_url=$5,
		       http_method=$6, headers_json=$7, auth_mode=$8, secret_ref=$9,
		       is_active=$10, next_run_at=$11, updated_at=NOW()
		WHERE id=$1 AND workspace_id=$2
		RETURNING id, workspace_id, name, kind, interval_minutes, endpoint_url,
		          http_method, headers_json, auth_mode, secret_ref, is_active,
		          next_run_at, last_run_at, lock_until, locked_by, created_at, updated_at`,
		routineID, workspaceID, existing.Name, existing.IntervalMinutes, existing.EndpointURL,
		existing.HTTPMethod, existing.HeadersJSON, existing.AuthMode, existing.SecretRef, existing.IsActive,
		existing.NextRunAt,
	)
	return scanRoutine(row)
}

func (s *Store) DeleteRoutine(ctx context.Context, workspaceID, routineID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM routines WHERE id=$1 AND workspace_id=$2`, routineID, workspaceID)
	if err != nil {
		return fmt.Errorf("postgres: delete_routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return routine.ErrRoutineNotFound
	}
	return nil
}

func (s *Store) InsertRun(ctx context.Context, run *routine.RoutineRun) (*routine.RoutineRun, error) {
	if run.ID == "" {
		run.ID = newID()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO routine_runs (
			id, routine_id, triggered_by, status, http_status, duration_ms,
			error_message, started_at, finished_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
		RETURNING id, routine_id, triggered_by, status, http_status, duration_ms,
		          error_message, started_at, finished_at, created_at`,
		run.ID, run.RoutineID, run.TriggeredBy, run.Status, run.HTTPStatus, run.DurationMs,
		run.ErrorMessage, run.StartedAt, run.FinishedAt,
	)
	return scanRun(row)
}

func (s *Store) ListRuns(ctx context.Context, routineID string, limit int) ([]*routine.RoutineRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, routine_id, triggered_by, status, http_status, duration_ms,
		       error_message, started_at, finished_at, created_at
		FROM routine_runs WHERE routine_id = $1
		ORDER BY created_at DESC LIMIT $2`, routineID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list_runs: %w", err)
	}
	defer rows.Close()

	var out []*routine.RoutineRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) TouchLastRun(ctx context.Context, workspaceID, routineID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE routines SET last_run_at=$3, updated_at=NOW() WHERE id=$1 AND workspace_id=$2`,
		routineID, workspaceID, at)
	if err != nil {
		return fmt.Errorf("postgres: touch_last_run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return routine.ErrRoutineNotFound
	}
	return nil
}

func (s *Store) ListDueRoutines(ctx context.Context, cutoff time.Time, limit int) ([]*routine.Routine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, workspace_id, name, kind, interval_minutes, endpoint_url,
		       http_method, headers_json, auth_mode, secret_ref, is_active,
		       next_run_at, last_run_at, lock_until, locked_by, created_at, updated_at
		FROM routines
		WHERE is_active = true
		  AND next_run_at <= $1
		  AND (lock_until IS NULL OR lock_until < $1)
		ORDER BY next_run_at ASC
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list_due_routines: %w", err)
	}
	defer rows.Close()

	var out []*routine.Routine
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TryLockRoutine is the conditional-update lease of spec.md §4.1. The
// RETURNING clause makes pgx report the affected row directly; when the
// predicate does not match, scanRoutine reports ErrRoutineNotFound, which
// distinguishes "no row updated" from a genuine transport error. Per spec.md's read-after-write mandate
// for backends that don't echo affected rows, a failed update falls back to
// a plain read so a caller can tell "never existed" apart from "leased by
// someone else" if it needs to.
func (s *Store) TryLockRoutine(ctx context.Context, workspaceID, routineID, ownerID string, now time.Time, leaseTTL time.Duration) (*routine.Routine, bool, error) {
	until := now.Add(leaseTTL)
	row := s.pool.QueryRow(ctx, `
		UPDATE routines SET lock_until=$4, locked_by=$5, updated_at=$3
		WHERE id=$1 AND workspace_id=$2 AND (lock_until IS NULL OR lock_until < $3)
		RETURNING id, workspace_id, name, kind, interval_minutes, endpoint_url,
		          http_method, headers_json, auth_mode, secret_ref, is_active,
		          next_run_at, last_run_at, lock_until, locked_by, created_at, updated_at`,
		routineID, workspaceID, now, until, ownerID,
	)
	r, err := scanRoutine(row)
	if err != nil {
		if errors.Is(err, routine.ErrRoutineNotFound) {
			if _, getErr := s.GetRoutine(ctx, workspaceID, routineID); getErr != nil {
				return nil, false, getErr
			}
			return nil, false, nil
		}
		return nil, false, err
	}
	return r, true, nil
}

func (s *Store) FinishScheduledRun(ctx context.Context, workspaceID, routineID, ownerID string, lastRunAt, nextRunAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE routines SET lock_until=NULL, locked_by='', last_run_at=$4,
		       next_run_at=$5, updated_at=NOW()
		WHERE id=$1 AND workspace_id=$2 AND locked_by=$3`,
		routineID, workspaceID, ownerID, lastRunAt, nextRunAt)
	if err != nil {
		return fmt.Errorf("postgres: finish_scheduled_run: %w", err)
	}
	return nil
}

func (s *Store) ReleaseLock(ctx context.Context, workspaceID, routineID, ownerID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE routines SET lock_until=NULL, locked_by=''
		WHERE id=$1 AND workspace_id=$2 AND locked_by=$3`,
		routineID, workspaceID, ownerID)
	if err != nil {
		return fmt.Errorf("postgres: release_lock: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoutine(row rowScanner) (*routine.Routine, error) {
	var r routine.Routine
	var lockedBy *string
	err := row.Scan(
		&r.ID, &r.WorkspaceID, &r.Name, &r.Kind, &r.IntervalMinutes, &r.EndpointURL,
		&r.HTTPMethod, &r.HeadersJSON, &r.AuthMode, &r.SecretRef, &r.IsActive,
		&r.NextRunAt, &r.LastRunAt, &r.LockUntil, &lockedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, routine.ErrRoutineNotFound
		}
		return nil, fmt.Errorf("postgres: scan routine: %w", err)
	}
	if lockedBy != nil {
		r.LockedBy = *lockedBy
	}
	return &r, nil
}

func scanRun(row rowScanner) (*routine.RoutineRun, error) {
	var r routine.RoutineRun
	err := row.Scan(
		&r.ID, &r.RoutineID, &r.TriggeredBy, &r.Status, &r.HTTPStatus, &r.DurationMs,
		&r.ErrorMessage, &r.StartedAt, &r.FinishedAt, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, routine.ErrRunNotFound
		}
		return nil, fmt.Errorf("postgres: scan run: %w", err)
	}
	return &r, nil
}

var _ routine.Store = (*Store)(nil)
