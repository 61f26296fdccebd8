// Package api implements the REST surface of spec.md §6: routine CRUD,
// manual run triggering, run history, and health/metrics, built on
// rest.NewServer/rest.ServerContext (examples/rest-server/main.go's usage
// pattern) with authentication and error-envelope conventions grounded on
// original_source/api/function_app.py and original_source/api/src/auth.py.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"oss.nandlabs.io/opspulse/clients"
	"oss.nandlabs.io/opspulse/rest"
)

// ErrUnauthorized is returned by IdentityResolver.Resolve when the bearer
// token is missing, malformed, or rejected by the identity provider.
var ErrUnauthorized = errors.New("api: missing or invalid bearer token")

// IdentityResolver turns an Authorization header value into the caller's
// external user id, which Store.GetOrCreateWorkspace then maps to a
// workspace. Grounded on auth.py's get_user_id_from_request: validate the
// "Bearer " prefix, then ask the identity provider's /auth/v1/user endpoint
// to confirm the token and return the subject id.
type IdentityResolver interface {
	Resolve(ctx context.Context, authHeader string) (userID string, err error)
}

// supabaseAuth resolves tokens against a Supabase project's GoTrue endpoint,
// using rest.Client (examples/rest-client/main.go's construct/NewRequest/
// Execute/Decode pattern) rather than a bespoke net/http call.
type supabaseAuth struct {
	baseURL string
	anonKey string
	client  *rest.Client
}

// NewSupabaseAuth returns an IdentityResolver backed by Supabase Auth
// (SUPABASE_URL + SUPABASE_ANON_KEY).
func NewSupabaseAuth(baseURL, anonKey string) IdentityResolver {
	return &supabaseAuth{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client:  rest.NewClient(),
	}
}

func (a *supabaseAuth) Resolve(ctx context.Context, authHeader string) (string, error) {
	if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return "", ErrUnauthorized
	}
	token := strings.TrimSpace(authHeader[len("bearer "):])
	if token == "" {
		return "", ErrUnauthorized
	}

	auth := clients.NewBearerAuth(token)
	tok, _ := auth.Token()

	req, err := a.client.NewRequest(a.baseURL+"/auth/v1/user", http.MethodGet)
	if err != nil {
		return "", err
	}
	if _, err := req.WithContext(ctx); err != nil {
		return "", err
	}
	req.AddHeader("apikey", a.anonKey).AddHeader("Authorization", "Bearer "+tok)

	resp, err := a.client.Execute(req)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		_ = resp.Close()
		return "", ErrUnauthorized
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", err
	}
	if body.ID == "" {
		return "", ErrUnauthorized
	}
	return body.ID, nil
}
