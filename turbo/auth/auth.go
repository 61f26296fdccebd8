// Package auth defines the route-level authentication hook turbo.Route.AddAuthenticator
// wires into its handler chain: Apply wraps the route's final handler so an
// Authenticator decides, per-request, whether the wrapped handler runs at all.
package auth

import "net/http"

// Authenticator gates access to a route. Apply receives the route's handler
// and returns a handler that enforces whatever credential check the
// implementation performs before delegating (or not) to next.
type Authenticator interface {
	Apply(next http.Handler) http.Handler
}
