package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, 1, cfg.UserID)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.False(t, cfg.Debug)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
api_base_url = "https://costs.example.com"
user_id = 7
model_provider = "anthropic"
debug = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://costs.example.com", cfg.APIBaseURL)
	assert.Equal(t, 7, cfg.UserID)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.True(t, cfg.Debug)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url = ["), 0644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLOUDEY_API_URL", "http://envhost:9000")
	t.Setenv("CLOUDEY_USER_ID", "42")
	t.Setenv("CLOUDEY_PROVIDER", "anthropic")
	t.Setenv("CLOUDEY_DEBUG", "1")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "http://envhost:9000", cfg.APIBaseURL)
	assert.Equal(t, 42, cfg.UserID)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.True(t, cfg.Debug)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`api_base_url = "http://filehost:8000"`), 0644))
	t.Setenv("CLOUDEY_API_URL", "http://envhost:9000")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "http://envhost:9000", cfg.APIBaseURL)
}

func TestEnvBadUserIDIgnored(t *testing.T) {
	t.Setenv("CLOUDEY_USER_ID", "not-a-number")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, DefaultUserID, cfg.UserID)
}
