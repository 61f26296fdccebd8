package api

import (
	"net/http"
	"strconv"
	"time"

	"oss.nandlabs.io/opspulse/rest"
	"oss.nandlabs.io/opspulse/routine"
	"oss.nandlabs.io/opspulse/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	minListLimit     = 1
)

// routineCreate is the request body of POST /routines, grounded on
// function_app.py's RoutineCreate pydantic model.
type routineCreate struct {
	Name            string            `json:"name"`
	Kind            routine.Kind      `json:"kind"`
	IntervalMinutes int               `json:"interval_minutes"`
	EndpointURL     string            `json:"endpoint_url"`
	HTTPMethod      string            `json:"http_method"`
	HeadersJSON     map[string]string `json:"headers_json"`
	AuthMode        routine.AuthMode  `json:"auth_mode"`
	SecretRef       string            `json:"secret_ref,omitempty"`
}

func (c *routineCreate) validate() string {
	switch {
	case c.Name == "":
		return "name is required"
	case c.EndpointURL == "":
		return "endpoint_url is required"
	case c.IntervalMinutes < routine.MinIntervalMinutes:
		return "interval_minutes must be at least " + strconv.Itoa(routine.MinIntervalMinutes)
	case c.AuthMode == routine.AuthModeSecretRef && c.SecretRef == "":
		return "secret_ref is required when auth_mode=SECRET_REF"
	default:
		return ""
	}
}

// routineUpdate is the request body of PATCH /routines/{id}. Nil fields mean
// "leave unchanged", mirroring RoutineUpdate's exclude_unset semantics.
type routineUpdate struct {
	Name            *string           `json:"name"`
	IntervalMinutes *int              `json:"interval_minutes"`
	EndpointURL     *string           `json:"endpoint_url"`
	HTTPMethod      *string           `json:"http_method"`
	HeadersJSON     map[string]string `json:"headers_json"`
	AuthMode        *routine.AuthMode `json:"auth_mode"`
	SecretRef       *string           `json:"secret_ref"`
	IsActive        *bool             `json:"is_active"`
}

// createRoutine handles POST /routines.
func (h *handlers) createRoutine(ctx rest.ServerContext, workspaceID string) {
	var body routineCreate
	if err := ctx.Read(&body); err != nil {
		writeBadRequest(ctx, "invalid JSON body")
		return
	}
	if msg := body.validate(); msg != "" {
		writeBadRequest(ctx, msg)
		return
	}
	if err := routine.ValidateHeaders(body.HeadersJSON); err != nil {
		writeBadRequest(ctx, err.Error())
		return
	}

	method := body.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}

	id, err := uuid.V4()
	if err != nil {
		writeInternal(ctx, err)
		return
	}

	now := time.Now().UTC()
	next := now.Add(time.Duration(body.IntervalMinutes) * time.Minute)
	next = time.Date(next.Year(), next.Month(), next.Day(), next.Hour(), next.Minute(), 0, 0, time.UTC)

	r := &routine.Routine{
		ID:              id.String(),
		WorkspaceID:     workspaceID,
		Name:            body.Name,
		Kind:            body.Kind,
		IntervalMinutes: body.IntervalMinutes,
		EndpointURL:     body.EndpointURL,
		HTTPMethod:      method,
		HeadersJSON:     body.HeadersJSON,
		AuthMode:        body.AuthMode,
		SecretRef:       body.SecretRef,
		IsActive:        true,
		NextRunAt:       next,
	}

	created, err := h.deps.Store.InsertRoutine(ctx.Context(), r)
	if err != nil {
		writeStoreError(ctx, err)
		return
	}

	writeJSON(ctx, http.StatusCreated, map[string]*routine.Routine{"routine": created})
}

// listRoutines handles GET /routines?limit=n.
func (h *handlers) listRoutines(ctx rest.ServerContext, workspaceID string) {
	limit, ok := parseLimit(ctx)
	if !ok {
		return
	}

	routines, err := h.deps.Store.ListRoutines(ctx.Context(), workspaceID, limit)
	if err != nil {
		writeStoreError(ctx, err)
		return
	}

	writeJSON(ctx, http.StatusOK, map[string][]*routine.Routine{"routines": routines})
}

// getRoutine handles GET /routines/{id}.
func (h *handlers) getRoutine(ctx rest.ServerContext, workspaceID string) {
	id, err := ctx.GetParam("id", rest.PathParam)
	if err != nil || id == "" {
		writeBadRequest(ctx, "missing routine id")
		return
	}

	r, err := h.deps.Store.GetRoutine(ctx.Context(), workspaceID, id)
	if err != nil {
		writeStoreError(ctx, err)
		return
	}

	writeJSON(ctx, http.StatusOK, map[string]*routine.Routine{"routine": r})
}

// patchRoutine handles PATCH /routines/{id}.
func (h *handlers) patchRoutine(ctx rest.ServerContext, workspaceID string) {
	id, err := ctx.GetParam("id", rest.PathParam)
	if err != nil || id == "" {
		writeBadRequest(ctx, "missing routine id")
		return
	}

	var body routineUpdate
	if err := ctx.Read(&body); err != nil {
		writeBadRequest(ctx, "invalid JSON body")
		return
	}
	if body.HeadersJSON != nil {
		if err := routine.ValidateHeaders(body.HeadersJSON); err != nil {
			writeBadRequest(ctx, err.Error())
			return
		}
	}
	if body.AuthMode != nil && *body.AuthMode == routine.AuthModeSecretRef {
		if body.SecretRef == nil || *body.SecretRef == "" {
			writeBadRequest(ctx, "secret_ref is required when auth_mode=SECRET_REF")
			return
		}
	}

	patch := &routine.RoutinePatch{
		Name:            body.Name,
		IntervalMinutes: body.IntervalMinutes,
		EndpointURL:     body.EndpointURL,
		HTTPMethod:      body.HTTPMethod,
		HeadersJSON:     body.HeadersJSON,
		AuthMode:        body.AuthMode,
		SecretRef:       body.SecretRef,
		IsActive:        body.IsActive,
	}
	if body.IntervalMinutes != nil {
		next := time.Now().UTC().Add(time.Duration(*body.IntervalMinutes) * time.Minute)
		next = time.Date(next.Year(), next.Month(), next.Day(), next.Hour(), next.Minute(), 0, 0, time.UTC)
		patch.NextRunAt = &next
	}

	if _, err := h.deps.Store.GetRoutine(ctx.Context(), workspaceID, id); err != nil {
		writeStoreError(ctx, err)
		return
	}

	updated, err := h.deps.Store.UpdateRoutine(ctx.Context(), workspaceID, id, patch)
	if err != nil {
		writeStoreError(ctx, err)
		return
	}

	writeJSON(ctx, http.StatusOK, map[string]*routine.Routine{"routine": updated})
}

// deleteRoutine handles DELETE /routines/{id}.
func (h *handlers) deleteRoutine(ctx rest.ServerContext, workspaceID string) {
	id, err := ctx.GetParam("id", rest.PathParam)
	if err != nil || id == "" {
		writeBadRequest(ctx, "missing routine id")
		return
	}

	if _, err := h.deps.Store.GetRoutine(ctx.Context(), workspaceID, id); err != nil {
		writeStoreError(ctx, err)
		return
	}

	if err := h.deps.Store.DeleteRoutine(ctx.Context(), workspaceID, id); err != nil {
		writeStoreError(ctx, err)
		return
	}

	writeJSON(ctx, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

// runRoutine handles POST /routines/{id}/run: a synchronous, unleased probe
// via ManualRunner (spec.md §4.4).
func (h *handlers) runRoutine(ctx rest.ServerContext, workspaceID string) {
	id, err := ctx.GetParam("id", rest.PathParam)
	if err != nil || id == "" {
		writeBadRequest(ctx, "missing routine id")
		return
	}

	run, err := h.deps.Runner.Run(ctx.Context(), workspaceID, id)
	if err != nil {
		writeStoreError(ctx, err)
		return
	}

	writeJSON(ctx, http.StatusOK, map[string]*routine.RoutineRun{"run": run})
}

// listRuns handles GET /routines/{id}/runs?limit=n.
func (h *handlers) listRuns(ctx rest.ServerContext, workspaceID string) {
	id, err := ctx.GetParam("id", rest.PathParam)
	if err != nil || id == "" {
		writeBadRequest(ctx, "missing routine id")
		return
	}

	limit, ok := parseLimit(ctx)
	if !ok {
		return
	}

	if _, err := h.deps.Store.GetRoutine(ctx.Context(), workspaceID, id); err != nil {
		writeStoreError(ctx, err)
		return
	}

	runs, err := h.deps.Store.ListRuns(ctx.Context(), id, limit)
	if err != nil {
		writeStoreError(ctx, err)
		return
	}

	writeJSON(ctx, http.StatusOK, map[string][]*routine.RoutineRun{"runs": runs})
}

// parseLimit reads and validates the ?limit= query param, writing a 400
// response and returning ok=false on failure.
func parseLimit(ctx rest.ServerContext) (int, bool) {
	raw, err := ctx.GetParam("limit", rest.QueryParam)
	if err != nil || raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minListLimit || n > maxListLimit {
		writeBadRequest(ctx, "limit must be between 1 and 200")
		return 0, false
	}
	return n, true
}
