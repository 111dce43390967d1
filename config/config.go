package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// Listens on all interfaces since the server is expected to be
	// accessed remotely.
	DefaultHost = "0.0.0.0"
	DefaultPort = 8255

	DefaultSessionTTL   = 5 * time.Minute
	DefaultDatabasePath = "./data/deskcontrol.db"
)

// Config holds the process configuration. Defaults are overridden by
// DESKCTL_* environment variables.
type Config struct {
	Host         string
	Port         int
	SessionTTL   time.Duration
	DatabasePath string
	Display      string
}

func Default() *Config {
	return &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		SessionTTL:   DefaultSessionTTL,
		DatabasePath: DefaultDatabasePath,
		Display:      os.Getenv("DISPLAY"),
	}
}

// LoadFromEnv applies environment variable overrides to cfg. Invalid
// values are ignored and the default kept.
func LoadFromEnv(cfg *Config) {
	if host := os.Getenv("DESKCTL_HOST"); host != "" {
		cfg.Host = host
	}

	if portStr := os.Getenv("DESKCTL_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 && port <= 65535 {
			cfg.Port = port
		}
	}

	if ttlStr := os.Getenv("DESKCTL_SESSION_TTL"); ttlStr != "" {
		if seconds, err := strconv.Atoi(ttlStr); err == nil && seconds > 0 {
			cfg.SessionTTL = time.Duration(seconds) * time.Second
		}
	}

	if dbPath := os.Getenv("DESKCTL_DB_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	if display := os.Getenv("DESKCTL_DISPLAY"); display != "" {
		cfg.Display = display
	}
}

// New creates a Config with defaults and environment overrides applied.
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
