package config

import "time"

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultSweepInterval is how often the idle sweep runs. The sweep
	// also runs once at process start.
	DefaultSweepInterval = 24 * time.Hour
)
