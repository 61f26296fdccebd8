// Package supabase implements routine.Store as a thin PostgREST client
// against a Supabase project, grounded line-for-line on
// original_source/api/src/supabase_admin.py's _req/get_or_create_workspace_id/
// insert_routine/list_routines/get_routine/insert_run/list_runs/
// touch_last_run/update_routine/delete_routine methods (the PostgREST
// query-string filter convention "column=eq.value", the
// "Prefer: return=representation" header to get rows back from
// POST/PATCH, and the apikey+Bearer service-role header pair).
// list_due_routines/try_lock_routine/finish_scheduled_run/release_lock have
// no PostgREST equivalent in the original source (that scheduler read
// routines it already knew were locked); this package derives them from the
// same filter grammar rather than inventing a second protocol.
//
// It authenticates with clients.AuthProvider (clients/auth.go) rather than
// a bare string, so the service-role key is exercised through the same
// AuthProvider abstraction the rest of the module uses for credentials.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"oss.nandlabs.io/opspulse/clients"
	"oss.nandlabs.io/opspulse/codec"
	"oss.nandlabs.io/opspulse/routine"
	"oss.nandlabs.io/opspulse/uuid"
)

const (
	restPrefix      = "/rest/v1"
	preferHeader    = "Prefer"
	returnRepr      = "return=representation"
	apiKeyHeader    = "apikey"
	defaultTimeout  = 10 * time.Second
)

// Store is a PostgREST-backed routine.Store.
type Store struct {
	baseURL string
	auth    clients.AuthProvider
	apiKey  string
	http    *http.Client
	json    codec.Codec
}

// New returns a Store talking to a Supabase project at baseURL
// (SUPABASE_URL), authenticating every request with the service-role key.
// apiKey is sent as the PostgREST "apikey" header, the same header the
// original httpx client set alongside the Authorization bearer.
func New(baseURL, serviceRoleKey string) *Store {
	return &Store{
		baseURL: trimTrailingSlash(baseURL),
		auth:    clients.NewBearerAuth(serviceRoleKey),
		apiKey:  serviceRoleKey,
		http:    &http.Client{Timeout: defaultTimeout},
		json:    codec.JsonCodec(),
	}
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

func newID() string {
	id, err := uuid.V4()
	if err != nil {
		return ""
	}
	return id.String()
}

// do executes a single PostgREST request, decoding a JSON array response
// into out when non-nil. It mirrors SupabaseAdmin._req: one request, header
// merge, no retries.
func (s *Store) do(ctx context.Context, method, path string, query url.Values, body any, extraHeaders map[string]string, out any) (*http.Response, error) {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := s.json.EncodeToBytes(body)
		if err != nil {
			return nil, fmt.Errorf("supabase: encode body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("supabase: build request: %w", err)
	}

	token, _ := s.auth.Token()
	req.Header.Set(apiKeyHeader, s.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("supabase: read response: %w", err)
	}
	if out != nil && len(data) > 0 {
		if err := s.json.DecodeBytes(data, out); err != nil {
			return resp, fmt.Errorf("supabase: decode response: %w", err)
		}
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

func eq(v string) string { return "eq." + v }

func (s *Store) GetOrCreateWorkspace(ctx context.Context, ownerID string) (string, error) {
	var rows []struct {
		ID string `json:"id"`
	}
	_, err := s.do(ctx, http.MethodGet, restPrefix+"/workspaces",
		url.Values{"owner_id": {eq(ownerID)}, "select": {"id"}, "limit": {"1"}},
		nil, nil, &rows)
	if err == nil && len(rows) > 0 {
		return rows[0].ID, nil
	}

	var created []struct {
		ID string `json:"id"`
	}
	resp, err := s.do(ctx, http.MethodPost, restPrefix+"/workspaces",
		url.Values{"select": {"id"}},
		map[string]string{"owner_id": ownerID, "name": "My Workspace"},
		map[string]string{preferHeader: returnRepr}, &created)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated || len(created) == 0 {
		return "", fmt.Errorf("supabase: create workspace failed, status=%d", resp.StatusCode)
	}
	return created[0].ID, nil
}

func (s *Store) InsertRoutine(ctx context.Context, r *routine.Routine) (*routine.Routine, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	var created []*routine.Routine
	resp, err := s.do(ctx, http.MethodPost, restPrefix+"/routines",
		url.Values{"select": {"*"}}, r, map[string]string{preferHeader: returnRepr}, &created)
	if err != nil {
		return nil, err
	}
	if (resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated) || len(created) == 0 {
		return nil, fmt.Errorf("supabase: insert_routine failed, status=%d", resp.StatusCode)
	}
	return created[0], nil
}

func (s *Store) ListRoutines(ctx context.Context, workspaceID string, limit int) ([]*routine.Routine, error) {
	var out []*routine.Routine
	_, err := s.do(ctx, http.MethodGet, restPrefix+"/routines",
		url.Values{
			"workspace_id": {eq(workspaceID)},
			"select":       {"*"},
			"order":        {"created_at.desc"},
			"limit":        {strconv.Itoa(limit)},
		}, nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetRoutine(ctx context.Context, workspaceID, routineID string) (*routine.Routine, error) {
	var rows []*routine.Routine
	_, err := s.do(ctx, http.MethodGet, restPrefix+"/routines",
		url.Values{
			"id":           {eq(routineID)},
			"workspace_id": {eq(workspaceID)},
			"select":       {"*"},
			"limit":        {"1"},
		}, nil, nil, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, routine.ErrRoutineNotFound
	}
	return rows[0], nil
}

func (s *Store) UpdateRoutine(ctx context.Context, workspaceID, routineID string, patch *routine.RoutinePatch) (*routine.Routine, error) {
	changes := map[string]any{}
	if patch.Name != nil {
		changes["name"] = *patch.Name
	}
	if patch.IntervalMinutes != nil {
		changes["interval_minutes"] = *patch.IntervalMinutes
	}
	if patch.EndpointURL != nil {
		changes["endpoint_url"] = *patch.EndpointURL
	}
	if patch.HTTPMethod != nil {
		changes["http_method"] = *patch.HTTPMethod
	}
	if patch.HeadersJSON != nil {
		changes["headers_json"] = patch.HeadersJSON
	}
	if patch.AuthMode != nil {
		changes["auth_mode"] = *patch.AuthMode
	}
	if patch.SecretRef != nil {
		changes["secret_ref"] = *patch.SecretRef
	}
	if patch.IsActive != nil {
		changes["is_active"] = *patch.IsActive
	}
	if patch.NextRunAt != nil {
		changes["next_run_at"] = *patch.NextRunAt
	}
	changes["updated_at"] = time.Now().UTC()

	var rows []*routine.Routine
	resp, err := s.do(ctx, http.MethodPatch, restPrefix+"/routines",
		url.Values{"id": {eq(routineID)}, "workspace_id": {eq(workspaceID)}, "select": {"*"}},
		changes, map[string]string{preferHeader: returnRepr}, &rows)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("supabase: update_routine failed, status=%d", resp.StatusCode)
	}
	if len(rows) == 0 {
		return nil, routine.ErrRoutineNotFound
	}
	return rows[0], nil
}

func (s *Store) DeleteRoutine(ctx context.Context, workspaceID, routineID string) error {
	resp, err := s.do(ctx, http.MethodDelete, restPrefix+"/routines",
		url.Values{"id": {eq(routineID)}, "workspace_id": {eq(workspaceID)}}, nil, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("supabase: delete_routine failed, status=%d", resp.StatusCode)
	}
	return nil
}

func (s *Store) InsertRun(ctx context.Context, run *routine.RoutineRun) (*routine.RoutineRun, error) {
	if run.ID == "" {
		run.ID = newID()
	}
	var created []*routine.RoutineRun
	resp, err := s.do(ctx, http.MethodPost, restPrefix+"/routine_runs",
		url.Values{"select": {"*"}}, run, map[string]string{preferHeader: returnRepr}, &created)
	if err != nil {
		return nil, err
	}
	if (resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated) || len(created) == 0 {
		return nil, fmt.Errorf("supabase: insert_run failed, status=%d", resp.StatusCode)
	}
	return created[0], nil
}

func (s *Store) ListRuns(ctx context.Context, routineID string, limit int) ([]*routine.RoutineRun, error) {
	var out []*routine.RoutineRun
	_, err := s.do(ctx, http.MethodGet, restPrefix+"/routine_runs",
		url.Values{
			"routine_id": {eq(routineID)},
			"select":     {"*"},
			"order":      {"created_at.desc"},
			"limit":      {strconv.Itoa(limit)},
		}, nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) TouchLastRun(ctx context.Context, workspaceID, routineID string, at time.Time) error {
	resp, err := s.do(ctx, http.MethodPatch, restPrefix+"/routines",
		url.Values{"id": {eq(routineID)}, "workspace_id": {eq(workspaceID)}},
		map[string]any{"last_run_at": at, "updated_at": at}, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("supabase: touch_last_run failed, status=%d", resp.StatusCode)
	}
	return nil
}

func (s *Store) ListDueRoutines(ctx context.Context, cutoff time.Time, limit int) ([]*routine.Routine, error) {
	var out []*routine.Routine
	_, err := s.do(ctx, http.MethodGet, restPrefix+"/routines",
		url.Values{
			"is_active":     {eq("true")},
			"next_run_at":   {"lte." + cutoff.Format(time.RFC3339)},
			"or":            {fmt.Sprintf("(lock_until.is.null,lock_until.lt.%s)", cutoff.Format(time.RFC3339))},
			"select":        {"*"},
			"order":         {"next_run_at.asc"},
			"limit":         {strconv.Itoa(limit)},
		}, nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TryLockRoutine performs the conditional update as a PATCH filtered on the
// unleased predicate, then re-reads the row, exactly matching the
// read-after-write fallback spec.md §4.1 requires for backends (like
// PostgREST) that report an affected-row count but not row identity in a
// way this client trusts blindly.
func (s *Store) TryLockRoutine(ctx context.Context, workspaceID, routineID, ownerID string, now time.Time, leaseTTL time.Duration) (*routine.Routine, bool, error) {
	until := now.Add(leaseTTL)
	query := url.Values{
		"id":           {eq(routineID)},
		"workspace_id": {eq(workspaceID)},
		"or":           {fmt.Sprintf("(lock_until.is.null,lock_until.lt.%s)", now.Format(time.RFC3339))},
		"select":       {"*"},
	}
	var rows []*routine.Routine
	resp, err := s.do(ctx, http.MethodPatch, restPrefix+"/routines", query,
		map[string]any{"lock_until": until, "locked_by": ownerID, "updated_at": now},
		map[string]string{preferHeader: returnRepr}, &rows)
	if err != nil {
		return nil, false, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, false, fmt.Errorf("supabase: try_lock_routine failed, status=%d", resp.StatusCode)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	r, err := s.GetRoutine(ctx, workspaceID, routineID)
	if err != nil {
		return nil, false, err
	}
	if r.LockedBy != ownerID {
		return nil, false, nil
	}
	return r, true, nil
}

func (s *Store) FinishScheduledRun(ctx context.Context, workspaceID, routineID, ownerID string, lastRunAt, nextRunAt time.Time) error {
	query := url.Values{
		"id":           {eq(routineID)},
		"workspace_id": {eq(workspaceID)},
		"locked_by":    {eq(ownerID)},
	}
	changes := map[string]any{
		"lock_until":  nil,
		"locked_by":   "",
		"last_run_at": lastRunAt,
		"next_run_at": nextRunAt,
		"updated_at":  time.Now().UTC(),
	}
	resp, err := s.do(ctx, http.MethodPatch, restPrefix+"/routines", query, changes, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("supabase: finish_scheduled_run failed, status=%d", resp.StatusCode)
	}
	return nil
}

func (s *Store) ReleaseLock(ctx context.Context, workspaceID, routineID, ownerID string) error {
	query := url.Values{
		"id":           {eq(routineID)},
		"workspace_id": {eq(workspaceID)},
		"locked_by":    {eq(ownerID)},
	}
	changes := map[string]any{"lock_until": nil, "locked_by": ""}
	resp, err := s.do(ctx, http.MethodPatch, restPrefix+"/routines", query, changes, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("supabase: release_lock failed, status=%d", resp.StatusCode)
	}
	return nil
}

func (s *Store) Close() error {
	s.http.CloseIdleConnections()
	return nil
}

var _ routine.Store = (*Store)(nil)
