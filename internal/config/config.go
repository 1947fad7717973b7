package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	DefaultAPIBaseURL = "http://localhost:8000"
	DefaultUserID     = 1
)

// Config holds application configuration
type Config struct {
	APIBaseURL string `toml:"api_base_url"`
	UserID     int    `toml:"user_id"` // single hardcoded user, no auth
	Provider   string `toml:"model_provider"`
	Debug      bool   `toml:"debug"`

	// SessionID preselects an existing chat session on startup
	SessionID string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIBaseURL: DefaultAPIBaseURL,
		UserID:     DefaultUserID,
		Provider:   ProviderOpenAI,
	}
}

// Home returns the cloudey home directory (~/.cloudey), creating it if needed.
func Home() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".cloudey")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// DefaultPath returns the default config file path (~/.cloudey/config.toml).
func DefaultPath() (string, error) {
	dir, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads configuration in precedence order: defaults, TOML file, environment.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CLOUDEY_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("CLOUDEY_USER_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.UserID = id
		}
	}
	if v := os.Getenv("CLOUDEY_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if os.Getenv("CLOUDEY_DEBUG") == "1" {
		cfg.Debug = true
	}
}
