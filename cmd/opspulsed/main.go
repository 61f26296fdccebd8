// Command opspulsed runs the opspulse scheduler and REST API as a single
// long-lived process, wiring routine.Scheduler and api.NewServer's rest.Server
// together under one lifecycle.ComponentManager so SIGINT/SIGTERM drains
// both in order, grounded on examples/rest-server/main.go's construct-then-
// Start pattern and lifecycle.NewSimpleComponentManager's own signal handling.
package main

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"oss.nandlabs.io/opspulse/api"
	"oss.nandlabs.io/opspulse/config"
	"oss.nandlabs.io/opspulse/lifecycle"
	"oss.nandlabs.io/opspulse/rest"
	"oss.nandlabs.io/opspulse/routine"
	"oss.nandlabs.io/opspulse/routine/store/memory"
	"oss.nandlabs.io/opspulse/routine/store/postgres"
	"oss.nandlabs.io/opspulse/routine/store/supabase"
)

func main() {
	cfg, err := routine.LoadConfigEnv()
	if err != nil {
		log.Fatalf("opspulsed: loading config: %v", err)
	}

	store, err := buildStore()
	if err != nil {
		log.Fatalf("opspulsed: building store: %v", err)
	}

	secretProvider := routine.NewEnvSecretProvider()
	prober := routine.NewHttpProber(secretProvider, cfg.HTTPTimeout())
	runner := routine.NewManualRunner(store, prober)

	registry := prometheus.NewRegistry()
	metrics := routine.NewMetrics(registry)

	scheduler := routine.New(store, prober, cfg, routine.WithMetrics(metrics))

	identity, err := buildIdentityResolver()
	if err != nil {
		log.Fatalf("opspulsed: building identity resolver: %v", err)
	}

	srvOpts := rest.DefaultSrvOptions()
	srvOpts.Id = "opspulse-api"
	srvOpts.ListenHost = config.GetEnvAsString("LISTEN_HOST", "0.0.0.0")
	listenPort, _ := config.GetEnvAsInt("LISTEN_PORT", 8080)
	srvOpts.ListenPort = int16(listenPort)

	server, err := api.NewServer(srvOpts, api.Deps{
		Store:    store,
		Runner:   runner,
		Identity: identity,
		Registry: registry,
	})
	if err != nil {
		log.Fatalf("opspulsed: building API server: %v", err)
	}

	schedulerComponent := &lifecycle.SimpleComponent{
		CompId: "scheduler",
		StartFunc: func() error {
			return scheduler.Start()
		},
		StopFunc: func() error {
			return scheduler.Stop()
		},
	}

	manager := lifecycle.NewSimpleComponentManager()
	manager.Register(server)
	manager.Register(schedulerComponent)

	if err := manager.StartAll(); err != nil {
		log.Fatalf("opspulsed: starting components: %v", err)
	}

	manager.Wait()

	if err := store.Close(); err != nil {
		log.Printf("opspulsed: closing store: %v", err)
	}
}

// buildStore selects a routine.Store backend via STORE_BACKEND
// (memory|postgres|supabase), defaulting to memory for local development.
func buildStore() (routine.Store, error) {
	switch config.GetEnvAsString("STORE_BACKEND", "memory") {
	case "postgres":
		dsn := config.GetEnvAsString("POSTGRES_DSN", "")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return postgres.Connect(ctx, dsn)
	case "supabase":
		baseURL := config.GetEnvAsString("SUPABASE_URL", "")
		serviceRoleKey := config.GetEnvAsString("SUPABASE_SERVICE_ROLE_KEY", "")
		return supabase.New(baseURL, serviceRoleKey), nil
	default:
		return memory.New(), nil
	}
}

// buildIdentityResolver resolves bearer tokens against Supabase Auth. It
// requires SUPABASE_URL/SUPABASE_ANON_KEY regardless of STORE_BACKEND, since
// auth and storage are independent concerns in the original deployment.
func buildIdentityResolver() (api.IdentityResolver, error) {
	baseURL := config.GetEnvAsString("SUPABASE_URL", "")
	anonKey := config.GetEnvAsString("SUPABASE_ANON_KEY", "")
	return api.NewSupabaseAuth(baseURL, anonKey), nil
}
