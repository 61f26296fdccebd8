package routine

import "time"

// Kind identifies what a Routine does when it fires.
type Kind string

const (
	KindHTTPCheck   Kind = "HTTP_CHECK"
	KindWebhookCall Kind = "WEBHOOK_CALL"
)

// AuthMode controls whether HttpProber injects a credential into the probe request.
type AuthMode string

const (
	AuthModeNone      AuthMode = "NONE"
	AuthModeSecretRef AuthMode = "SECRET_REF"
)

// TriggeredBy records what caused a RoutineRun to execute.
type TriggeredBy string

const (
	TriggeredBySchedule TriggeredBy = "SCHEDULE"
	TriggeredByManual   TriggeredBy = "MANUAL"
)

// RunStatus is the outcome classification of a single probe execution.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFail    RunStatus = "FAIL"
)

// Routine is a persisted specification of a recurring HTTP probe.
//
// Lock fields (LockUntil, LockedBy) obey invariant I1: LockUntil is nil iff
// LockedBy is empty. While time.Now() is before LockUntil the routine is
// leased and list_due_routines must skip it.
type Routine struct {
	ID              string            `json:"id" yaml:"id"`
	WorkspaceID     string            `json:"workspace_id" yaml:"workspace_id"`
	Name            string            `json:"name" yaml:"name"`
	Kind            Kind              `json:"kind" yaml:"kind"`
	IntervalMinutes int               `json:"interval_minutes" yaml:"interval_minutes"`
	EndpointURL     string            `json:"endpoint_url" yaml:"endpoint_url"`
	HTTPMethod      string            `json:"http_method" yaml:"http_method"`
	HeadersJSON     map[string]string `json:"headers_json" yaml:"headers_json"`
	AuthMode        AuthMode          `json:"auth_mode" yaml:"auth_mode"`
	SecretRef       string            `json:"secret_ref,omitempty" yaml:"secret_ref,omitempty"`
	IsActive        bool              `json:"is_active" yaml:"is_active"`
	NextRunAt       time.Time         `json:"next_run_at" yaml:"next_run_at"`
	LastRunAt       *time.Time        `json:"last_run_at,omitempty" yaml:"last_run_at,omitempty"`
	LockUntil       *time.Time        `json:"lock_until,omitempty" yaml:"lock_until,omitempty"`
	LockedBy        string            `json:"locked_by,omitempty" yaml:"locked_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" yaml:"updated_at"`
}

// Leased reports whether the routine currently holds a live lease at instant now.
func (r *Routine) Leased(now time.Time) bool {
	return r.LockUntil != nil && now.Before(*r.LockUntil)
}

// RoutineRun is an immutable record of one execution of a Routine.
type RoutineRun struct {
	ID           string      `json:"id" yaml:"id"`
	RoutineID    string      `json:"routine_id" yaml:"routine_id"`
	TriggeredBy  TriggeredBy `json:"triggered_by" yaml:"triggered_by"`
	Status       RunStatus   `json:"status" yaml:"status"`
	HTTPStatus   *int        `json:"http_status,omitempty" yaml:"http_status,omitempty"`
	DurationMs   int64       `json:"duration_ms" yaml:"duration_ms"`
	ErrorMessage string      `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	StartedAt    time.Time   `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time   `json:"finished_at" yaml:"finished_at"`
	CreatedAt    time.Time   `json:"created_at" yaml:"created_at"`
}

// RoutinePatch is the set of mutable Routine fields a PATCH request may update.
// Nil pointers mean "leave unchanged".
type RoutinePatch struct {
	Name            *string
	IntervalMinutes *int
	EndpointURL     *string
	HTTPMethod      *string
	HeadersJSON     map[string]string
	AuthMode        *AuthMode
	SecretRef       *string
	IsActive        *bool
	// NextRunAt re-anchors the schedule, grounded on
	// original_source/api/function_app.py's patch_routine handler: changing
	// IntervalMinutes recomputes NextRunAt as now+interval (truncated to the
	// minute) in the same request, since a stale anchor would otherwise let
	// scheduleClock.Advance apply the new interval against a next_run_at set
	// under the old one.
	NextRunAt *time.Time
}

const (
	// ErrorMessageMaxLen is the maximum length of RoutineRun.ErrorMessage (spec.md §3).
	ErrorMessageMaxLen = 180
	// MinIntervalMinutes is the smallest interval a Routine may be scheduled at.
	MinIntervalMinutes = 5
)
