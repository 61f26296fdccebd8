package api

import (
	"errors"
	"net/http"

	"oss.nandlabs.io/opspulse/rest"
	"oss.nandlabs.io/opspulse/routine"
)

// errorBody is the JSON shape of every non-2xx response, grounded on
// function_app.py's _json(status, payload) helper:
//
//	{"error": {"code": "<snake_case>", "message": "<human text>"}}
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes body as the response at statusCode. Every JSON response,
// success or error, carries Cache-Control: no-store per spec.md §6 — routine
// run results and secrets-adjacent payloads must never be cached upstream.
func writeJSON(ctx rest.ServerContext, statusCode int, body any) {
	ctx.SetHeader("Cache-Control", "no-store")
	ctx.SetStatusCode(statusCode)
	_ = ctx.WriteJSON(body)
}

// writeError writes the envelope above at statusCode with code/message.
func writeError(ctx rest.ServerContext, statusCode int, code, message string) {
	writeJSON(ctx, statusCode, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeBadRequest(ctx rest.ServerContext, message string) {
	writeError(ctx, http.StatusBadRequest, "bad_request", message)
}

func writeUnauthorized(ctx rest.ServerContext, message string) {
	writeError(ctx, http.StatusUnauthorized, "unauthorized", message)
}

func writeNotFound(ctx rest.ServerContext, message string) {
	writeError(ctx, http.StatusNotFound, "not_found", message)
}

func writeInternal(ctx rest.ServerContext, err error) {
	logger.ErrorF("internal error: %v", err)
	writeError(ctx, http.StatusInternalServerError, "internal_error", "an internal error occurred")
}

// writeStoreError maps a routine.Store error to the appropriate envelope,
// distinguishing "not found" from everything else.
func writeStoreError(ctx rest.ServerContext, err error) {
	switch {
	case errors.Is(err, routine.ErrRoutineNotFound):
		writeNotFound(ctx, "routine not found")
	case errors.Is(err, routine.ErrRunNotFound):
		writeNotFound(ctx, "run not found")
	case errors.Is(err, routine.ErrWorkspaceNotFound):
		writeNotFound(ctx, "workspace not found")
	default:
		writeInternal(ctx, err)
	}
}
