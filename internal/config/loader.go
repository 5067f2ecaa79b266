package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load loads configuration from file, environment, and defaults
// Uses the global viper instance to access CLI flag bindings
func Load() (*Config, error) {
	return load(viper.GetViper())
}

// LoadWithViper loads configuration into a fresh viper instance and returns it
func LoadWithViper() (*Config, *viper.Viper, error) {
	v := viper.New()
	cfg, err := load(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Config file settings
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Environment variables (GITINGEST_*)
	v.SetEnvPrefix("GITINGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("client.base_url", ClientBaseURLEnv, "GITINGEST_CLIENT_BASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate and apply defaults for invalid values
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	// Ingest defaults
	v.SetDefault("ingest.tmp_base_path", DefaultTmpBasePath())
	v.SetDefault("ingest.delete_repo_after", DefaultDeleteRepoAfter)
	v.SetDefault("ingest.max_display_size", DefaultMaxDisplaySize)
	v.SetDefault("ingest.max_file_size", DefaultMaxFileSize)
	v.SetDefault("ingest.clone_timeout", DefaultCloneTimeout)
	v.SetDefault("ingest.workers", DefaultWorkers)

	// Sweep defaults
	v.SetDefault("sweep.enabled", DefaultSweepEnabled)
	v.SetDefault("sweep.interval", DefaultSweepInterval)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.requests", DefaultRateLimitRequests)
	v.SetDefault("rate_limit.window", DefaultRateLimitWindow)

	// Client defaults
	v.SetDefault("client.base_url", DefaultClientBaseURL)
	v.SetDefault("client.max_retries", DefaultClientMaxRetries)
	v.SetDefault("client.initial_delay", DefaultClientInitialDelay)
	v.SetDefault("client.timeout", DefaultClientTimeout)

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

// Marshal renders cfg as YAML, in the layout accepted by the config file
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0755)
}
