package routine

import (
	"fmt"
	"os"
	"time"

	env "github.com/caarlos0/env/v11"
)

// defaultInstanceID generates a per-process instance identifier when
// INSTANCE_ID is not set, grounded on chrono.defaultInstanceID's
// hostname-pid-nanotime shape (chrono/scheduler.go).
func defaultInstanceID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%d-%d", host, os.Getpid(), time.Now().UnixNano())
}

// LoadConfigEnv binds Config in one shot via github.com/caarlos0/env,
// grounded on other_examples/manifests/ErlanBelekov-dist-job-scheduler's
// use of the same library for its own service configuration. This is an
// alternative to LoadConfig's per-field config.GetEnvAsString/Int reads,
// intended for cmd/opspulsed's single process-start binding; package code
// elsewhere keeps reading individual settings through the ambient
// config.GetEnvAs* helpers.
func LoadConfigEnv() (*Config, error) {
	cfg := &Config{TickInterval: 5 * time.Minute}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = defaultInstanceID()
	}
	return cfg, nil
}
