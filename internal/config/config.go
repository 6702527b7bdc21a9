// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables with the PROPOSAL_ prefix (runtime override)
//  2. Config file (~/.proposalstudio/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Agent: invocation endpoint, agent ID, API key
//   - Training: RAG collection ID for document uploads
//   - Generation: default deck depth, tone directives, progress tick interval
//   - Storage: local data directory for history and settings
//
// Error Handling: sentinel errors for errors.Is() checks; validation wraps
// them with context using fmt.Errorf("%w: details").
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAgentID indicates the manager agent ID is not configured.
	ErrMissingAgentID = errors.New("missing agent ID")

	// ErrInvalidAgentURL indicates the agent base URL is invalid.
	ErrInvalidAgentURL = errors.New("invalid agent URL")

	// ErrInvalidDepth indicates the deck depth is not a supported value.
	ErrInvalidDepth = errors.New("invalid deck depth")

	// ErrInvalidProgressInterval indicates the progress tick interval is out of range.
	ErrInvalidProgressInterval = errors.New("invalid progress interval")
)

const (
	// configDirName is the directory under $HOME holding config and local data.
	configDirName = ".proposalstudio"

	// DefaultAgentBaseURL is the default agent invocation endpoint base.
	DefaultAgentBaseURL = "https://agents.example.com"

	// DefaultProgressInterval is the default progress estimator tick interval.
	DefaultProgressInterval = 3 * time.Second

	// MinProgressInterval bounds the estimator interval from below so the
	// cosmetic ticker cannot busy-loop.
	MinProgressInterval = 100 * time.Millisecond
)

// Supported deck depths (requested section counts).
const (
	DepthSummary = 15
	DepthFull    = 30
)

// Config stores application configuration.
type Config struct {
	// Agent invocation
	AgentBaseURL string `mapstructure:"agent_base_url"`
	AgentID      string `mapstructure:"agent_id"`
	APIKey       string `mapstructure:"api_key"`

	// Document training
	CollectionID string `mapstructure:"collection_id"`

	// Generation defaults
	DefaultDepth      int           `mapstructure:"default_depth"`
	ToneInstitutional bool          `mapstructure:"tone_institutional"`
	SuppressMarketing bool          `mapstructure:"suppress_marketing"`
	ProgressInterval  time.Duration `mapstructure:"progress_interval"`

	// Local storage
	DataDir string `mapstructure:"data_dir"`

	// Logging
	LogJSON bool `mapstructure:"log_json"`
}

// Load reads configuration from file, environment, and defaults.
// A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	configDir := filepath.Join(home, configDirName)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	bindEnv(v)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindEnv binds every configuration key to its PROPOSAL_* environment
// variable explicitly. AutomaticEnv is not used: it only surfaces env values
// for keys that also have a default or config-file entry, which silently
// drops env-only keys like agent_id.
func bindEnv(v *viper.Viper) {
	// Panic on bind errors (hardcoded strings can't fail). If this panics,
	// it's a bug in this file, not a runtime condition.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("agent_base_url", "PROPOSAL_AGENT_BASE_URL")
	mustBind("agent_id", "PROPOSAL_AGENT_ID")
	mustBind("api_key", "PROPOSAL_API_KEY")
	mustBind("collection_id", "PROPOSAL_COLLECTION_ID")
	mustBind("default_depth", "PROPOSAL_DEFAULT_DEPTH")
	mustBind("tone_institutional", "PROPOSAL_TONE_INSTITUTIONAL")
	mustBind("suppress_marketing", "PROPOSAL_SUPPRESS_MARKETING")
	mustBind("progress_interval", "PROPOSAL_PROGRESS_INTERVAL")
	mustBind("data_dir", "PROPOSAL_DATA_DIR")
	mustBind("log_json", "PROPOSAL_LOG_JSON")
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("agent_base_url", DefaultAgentBaseURL)
	v.SetDefault("default_depth", DepthSummary)
	v.SetDefault("tone_institutional", true)
	v.SetDefault("suppress_marketing", true)
	v.SetDefault("progress_interval", DefaultProgressInterval)
	v.SetDefault("data_dir", filepath.Join(configDir, "data"))
	v.SetDefault("log_json", false)
}

// Validate checks configuration values for consistency.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if !strings.HasPrefix(c.AgentBaseURL, "http://") && !strings.HasPrefix(c.AgentBaseURL, "https://") {
		return fmt.Errorf("%w: %q must start with http:// or https://", ErrInvalidAgentURL, c.AgentBaseURL)
	}
	if c.DefaultDepth != DepthSummary && c.DefaultDepth != DepthFull {
		return fmt.Errorf("%w: %d (supported: %d, %d)", ErrInvalidDepth, c.DefaultDepth, DepthSummary, DepthFull)
	}
	if c.ProgressInterval < MinProgressInterval {
		return fmt.Errorf("%w: %v (minimum %v)", ErrInvalidProgressInterval, c.ProgressInterval, MinProgressInterval)
	}
	return nil
}
