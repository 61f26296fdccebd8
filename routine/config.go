package routine

import (
	"time"

	"oss.nandlabs.io/opspulse/config"
)

// Config carries every environment-driven tunable named in spec.md §6,
// captured as a plain values-struct (spec.md §9: "no process-wide
// singletons") and passed explicitly to the Scheduler and Prober.
type Config struct {
	HTTPTimeoutSeconds  int64         `env:"HTTP_TIMEOUT_SECONDS" envDefault:"8"`
	LockLeaseSeconds    int64         `env:"LOCK_LEASE_SECONDS" envDefault:"45"`
	SchedulerBatchLimit int           `env:"SCHEDULER_BATCH_LIMIT" envDefault:"20"`
	MaxConcurrency      int           `env:"MAX_CONCURRENCY" envDefault:"5"`
	DueSlackSeconds     int64         `env:"DUE_SLACK_SECONDS" envDefault:"3"`
	InstanceID          string        `env:"INSTANCE_ID"`
	TickInterval        time.Duration `env:"-"`
}

// LoadConfig populates Config from process environment using the teacher's
// own config.GetEnvAs* helpers (config/environment.go), matching the ambient
// convention every other package in this tree uses for ad hoc env reads. For
// whole-struct binding at process start, see LoadConfigEnv.
func LoadConfig() *Config {
	instanceID := config.GetEnvAsString("INSTANCE_ID", "")
	if instanceID == "" {
		instanceID = defaultInstanceID()
	}

	httpTimeout, _ := config.GetEnvAsInt64("HTTP_TIMEOUT_SECONDS", 8)
	lockLease, _ := config.GetEnvAsInt64("LOCK_LEASE_SECONDS", 45)
	batchLimit, _ := config.GetEnvAsInt("SCHEDULER_BATCH_LIMIT", 20)
	maxConcurrency, _ := config.GetEnvAsInt("MAX_CONCURRENCY", 5)
	dueSlack, _ := config.GetEnvAsInt64("DUE_SLACK_SECONDS", 3)

	return &Config{
		HTTPTimeoutSeconds:  httpTimeout,
		LockLeaseSeconds:    lockLease,
		SchedulerBatchLimit: batchLimit,
		MaxConcurrency:      maxConcurrency,
		DueSlackSeconds:     dueSlack,
		InstanceID:          instanceID,
		TickInterval:        5 * time.Minute,
	}
}

// HTTPTimeout returns HTTPTimeoutSeconds as a time.Duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// LockLease returns LockLeaseSeconds as a time.Duration.
func (c *Config) LockLease() time.Duration {
	return time.Duration(c.LockLeaseSeconds) * time.Second
}

// DueSlack returns DueSlackSeconds as a time.Duration.
func (c *Config) DueSlack() time.Duration {
	return time.Duration(c.DueSlackSeconds) * time.Second
}
