package config

import "time"

// DaemonConfig holds daemon process configuration.
type DaemonConfig struct {
	// PIDFile enforces a single daemon instance.
	PIDFile string `mapstructure:"pid_file"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}
