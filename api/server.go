package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oss.nandlabs.io/opspulse/l3"
	"oss.nandlabs.io/opspulse/rest"
	"oss.nandlabs.io/opspulse/routine"
)

var logger = l3.Get()

// Deps bundles everything the REST surface needs to serve a request,
// mirroring function_app.py's module-level wiring of supabase_admin +
// env-driven settings into each route handler.
type Deps struct {
	Store    routine.Store
	Runner   *routine.ManualRunner
	Identity IdentityResolver
	Registry *prometheus.Registry
}

// NewServer builds a rest.Server with every opspulse route registered on
// it, following examples/rest-server/main.go's construct-then-register
// pattern. The returned Server is a lifecycle.Component the caller
// registers alongside the Scheduler under a single lifecycle.ComponentManager.
func NewServer(opts *rest.SrvOptions, deps Deps) (rest.Server, error) {
	server, err := rest.NewServer(opts)
	if err != nil {
		return nil, err
	}

	h := &handlers{deps: deps}

	if _, err := server.Get("/health", h.health); err != nil {
		return nil, err
	}
	if _, err := server.Post("/routines", h.authenticated(h.createRoutine)); err != nil {
		return nil, err
	}
	if _, err := server.Get("/routines", h.authenticated(h.listRoutines)); err != nil {
		return nil, err
	}
	if _, err := server.Get("/routines/:id", h.authenticated(h.getRoutine)); err != nil {
		return nil, err
	}
	if _, err := server.AddRoute("/routines/:id", h.authenticated(h.patchRoutine), http.MethodPatch); err != nil {
		return nil, err
	}
	if _, err := server.Delete("/routines/:id", h.authenticated(h.deleteRoutine)); err != nil {
		return nil, err
	}
	if _, err := server.Post("/routines/:id/run", h.authenticated(h.runRoutine)); err != nil {
		return nil, err
	}
	if _, err := server.Get("/routines/:id/runs", h.authenticated(h.listRuns)); err != nil {
		return nil, err
	}

	if deps.Registry != nil {
		metricsHandler := promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})
		if err := wireMetricsEndpoint(server, metricsHandler); err != nil {
			return nil, err
		}
	}

	return server, nil
}

// wireMetricsEndpoint mounts a plain net/http handler (promhttp.Handler)
// under the turbo router directly, since GET /metrics answers with the
// Prometheus text exposition format rather than the JSON envelope every
// other route writes through rest.ServerContext.
func wireMetricsEndpoint(server rest.Server, metricsHandler http.Handler) error {
	server.Router().Add("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metricsHandler.ServeHTTP(w, r)
	}, http.MethodGet)
	return nil
}
