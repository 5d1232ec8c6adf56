package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"migration-reconciliation/internal/domain"
	"migration-reconciliation/internal/reconcile"
)

// Config is the service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Reasons   ReasonsConfig   `mapstructure:"reasons"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type JobsConfig struct {
	SimulatedLatency time.Duration             `mapstructure:"simulated_latency"`
	HistoryLimit     int                       `mapstructure:"history_limit"`
	Seed             int64                     `mapstructure:"seed"`
	Definitions      []domain.ComparisonConfig `mapstructure:"definitions"`
}

// ReasonsConfig points at an optional YAML reason dictionary.
type ReasonsConfig struct {
	Path string `mapstructure:"path"`
}

type ReconcileConfig struct {
	RoundingTolerance float64 `mapstructure:"rounding_tolerance"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("jobs.simulated_latency", 2*time.Second)
	v.SetDefault("jobs.history_limit", 50)
	v.SetDefault("jobs.seed", time.Now().UnixNano())
	v.SetDefault("reasons.path", "")
	v.SetDefault("reconcile.rounding_tolerance", reconcile.DefaultRoundingTolerance)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
}

// Load reads config.yaml from configPath (or the working directory), then
// applies RECON_* environment overrides, e.g. RECON_GEMINI_API_KEY.
// A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("RECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(cfg.Jobs.Definitions) == 0 {
		cfg.Jobs.Definitions = domain.DefaultJobs()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Jobs.SimulatedLatency < 0 {
		return fmt.Errorf("jobs.simulated_latency must not be negative")
	}
	if c.Reconcile.RoundingTolerance <= 0 {
		return fmt.Errorf("reconcile.rounding_tolerance must be positive")
	}
	seen := make(map[string]bool, len(c.Jobs.Definitions))
	for i, j := range c.Jobs.Definitions {
		if j.ID == "" {
			return fmt.Errorf("jobs.definitions[%d] has no id", i)
		}
		if seen[j.ID] {
			return fmt.Errorf("job %s defined twice", j.ID)
		}
		seen[j.ID] = true
		if (j.OldPath == "") != (j.NewPath == "") {
			return fmt.Errorf("job %s must set both old_path and new_path or neither", j.ID)
		}
	}
	return nil
}
