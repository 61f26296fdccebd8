package api

import (
	"net/http"

	"oss.nandlabs.io/opspulse/rest"
)

// handlers holds the dependencies every route closure needs, grounded on
// function_app.py's handlers sharing one module-level supabase_admin client.
type handlers struct {
	deps Deps
}

// authedHandlerFunc is a HandlerFunc that additionally receives the caller's
// resolved workspace id.
type authedHandlerFunc func(ctx rest.ServerContext, workspaceID string)

// authenticated resolves the Authorization header into a workspace id
// before delegating to next, grounded on auth.py's
// get_user_id_from_request gate applied at the top of every non-health
// route in function_app.py.
func (h *handlers) authenticated(next authedHandlerFunc) rest.HandlerFunc {
	return func(ctx rest.ServerContext) {
		userID, err := h.deps.Identity.Resolve(ctx.Context(), ctx.GetHeader("Authorization"))
		if err != nil {
			writeUnauthorized(ctx, "missing or invalid authorization")
			return
		}

		workspaceID, err := h.deps.Store.GetOrCreateWorkspace(ctx.Context(), userID)
		if err != nil {
			writeInternal(ctx, err)
			return
		}

		next(ctx, workspaceID)
	}
}

// health answers GET /health unauthenticated, matching function_app.py's
// health route which performs no auth check.
func (h *handlers) health(ctx rest.ServerContext) {
	writeJSON(ctx, http.StatusOK, map[string]string{"status": "ok"})
}
