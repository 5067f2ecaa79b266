package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Ingest    IngestConfig    `mapstructure:"ingest" yaml:"ingest"`
	Sweep     SweepConfig     `mapstructure:"sweep" yaml:"sweep"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Client    ClientConfig    `mapstructure:"client" yaml:"client"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IngestConfig contains settings of the in-process ingestion pipeline
type IngestConfig struct {
	TmpBasePath     string        `mapstructure:"tmp_base_path" yaml:"tmp_base_path"`
	DeleteRepoAfter time.Duration `mapstructure:"delete_repo_after" yaml:"delete_repo_after"`
	MaxDisplaySize  string        `mapstructure:"max_display_size" yaml:"max_display_size"`
	MaxFileSize     int           `mapstructure:"max_file_size" yaml:"max_file_size"` // kilobytes
	CloneTimeout    time.Duration `mapstructure:"clone_timeout" yaml:"clone_timeout"`
	Workers         int           `mapstructure:"workers" yaml:"workers"`
}

// MaxDisplayBytes returns MaxDisplaySize in bytes.
// Validate must have been called first.
func (i IngestConfig) MaxDisplayBytes() int64 {
	n, err := ParseSize(i.MaxDisplaySize)
	if err != nil {
		return 0
	}
	return n
}

// SweepConfig contains stale clone directory cleanup settings
type SweepConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// RateLimitConfig contains per-client request quota settings
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Requests int           `mapstructure:"requests" yaml:"requests"`
	Window   time.Duration `mapstructure:"window" yaml:"window"`
}

// ClientConfig contains settings of the remote ingestion client
type ClientConfig struct {
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	MaxRetries   int           `mapstructure:"max_retries" yaml:"max_retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < time.Second {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Ingest.TmpBasePath == "" {
		c.Ingest.TmpBasePath = DefaultTmpBasePath()
	}
	if c.Ingest.DeleteRepoAfter <= 0 {
		c.Ingest.DeleteRepoAfter = DefaultDeleteRepoAfter
	}
	if c.Ingest.MaxFileSize <= 0 {
		c.Ingest.MaxFileSize = DefaultMaxFileSize
	}
	if c.Ingest.CloneTimeout < time.Second {
		c.Ingest.CloneTimeout = DefaultCloneTimeout
	}
	if c.Ingest.Workers < 1 {
		c.Ingest.Workers = DefaultWorkers
	}
	if c.Ingest.MaxDisplaySize == "" {
		c.Ingest.MaxDisplaySize = DefaultMaxDisplaySize
	} else if _, err := ParseSize(c.Ingest.MaxDisplaySize); err != nil {
		return fmt.Errorf("invalid ingest.max_display_size: %w", err)
	}
	if c.Sweep.Interval < time.Second {
		c.Sweep.Interval = DefaultSweepInterval
	}
	if c.RateLimit.Requests < 1 {
		c.RateLimit.Requests = DefaultRateLimitRequests
	}
	if c.RateLimit.Window < time.Second {
		c.RateLimit.Window = DefaultRateLimitWindow
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = DefaultClientBaseURL
	}
	if c.Client.MaxRetries < 1 {
		c.Client.MaxRetries = DefaultClientMaxRetries
	}
	if c.Client.InitialDelay <= 0 {
		c.Client.InitialDelay = DefaultClientInitialDelay
	}
	if c.Client.Timeout < time.Second {
		c.Client.Timeout = DefaultClientTimeout
	}
	return nil
}

func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	var multiplier int64 = 1
	if strings.HasSuffix(s, "GB") {
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	} else if strings.HasSuffix(s, "MB") {
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	} else if strings.HasSuffix(s, "KB") {
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("no numeric value in size string")
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value: %w", err)
	}

	if n < 0 {
		return 0, fmt.Errorf("negative size not allowed")
	}

	return n * multiplier, nil
}
