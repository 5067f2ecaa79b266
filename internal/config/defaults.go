package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Server defaults
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8001
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 10 * time.Minute
	DefaultShutdownTimeout = 15 * time.Second

	// Ingest defaults
	DefaultDeleteRepoAfter = 60 * time.Minute
	DefaultMaxDisplaySize  = "300KB"
	DefaultMaxFileSize     = 243
	DefaultCloneTimeout    = 5 * time.Minute
	DefaultWorkers         = 8

	// Sweep defaults
	DefaultSweepEnabled  = true
	DefaultSweepInterval = 60 * time.Second

	// Rate limit defaults
	DefaultRateLimitEnabled  = true
	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = time.Minute

	// Client defaults
	DefaultClientBaseURL      = "http://192.168.50.90:8082"
	DefaultClientMaxRetries   = 3
	DefaultClientInitialDelay = 1 * time.Second
	DefaultClientTimeout      = 5 * time.Minute

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ClientBaseURLEnv overrides the remote ingestion service address
const ClientBaseURLEnv = "GITINGEST_URL"

// DefaultTmpBasePath returns the root directory for temporary clones
func DefaultTmpBasePath() string {
	return filepath.Join(os.TempDir(), "gitingest")
}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gitingest"
	}
	return filepath.Join(home, ".gitingest")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Ingest: IngestConfig{
			TmpBasePath:     DefaultTmpBasePath(),
			DeleteRepoAfter: DefaultDeleteRepoAfter,
			MaxDisplaySize:  DefaultMaxDisplaySize,
			MaxFileSize:     DefaultMaxFileSize,
			CloneTimeout:    DefaultCloneTimeout,
			Workers:         DefaultWorkers,
		},
		Sweep: SweepConfig{
			Enabled:  DefaultSweepEnabled,
			Interval: DefaultSweepInterval,
		},
		RateLimit: RateLimitConfig{
			Enabled:  DefaultRateLimitEnabled,
			Requests: DefaultRateLimitRequests,
			Window:   DefaultRateLimitWindow,
		},
		Client: ClientConfig{
			BaseURL:      DefaultClientBaseURL,
			MaxRetries:   DefaultClientMaxRetries,
			InitialDelay: DefaultClientInitialDelay,
			Timeout:      DefaultClientTimeout,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
