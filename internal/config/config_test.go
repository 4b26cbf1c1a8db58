package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tripwise-agent/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)

	assert.Equal(t, config.ModeLocal, cfg.Mode)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.True(t, cfg.UseMockLLM)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "Delhi", cfg.Planner.HomeCity)
	assert.Equal(t, 14, cfg.Planner.LeadDays)
	assert.Equal(t, "report", cfg.Planner.BookingPolicy)
	assert.Equal(t, 20*time.Second, cfg.Planner.OracleTimeout)
	assert.InDelta(t, 0.1, cfg.Inventory.PriceJitter, 1e-9)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TRIPWISE_MODE", "gcp")
	t.Setenv("TRIPWISE_GCP_PROJECT", "tripwise-dev")
	t.Setenv("TRIPWISE_STORAGE_BACKEND", "sqlite")
	t.Setenv("TRIPWISE_PLANNER_BOOKING_POLICY", "compensate")
	t.Setenv("TRIPWISE_PLANNER_ORACLE_TIMEOUT", "5s")
	t.Setenv("TRIPWISE_HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)

	assert.Equal(t, config.ModeGCP, cfg.Mode)
	assert.False(t, cfg.UseMockLLM)
	assert.Equal(t, "sqlite", cfg.StorageBackend)
	assert.Equal(t, "compensate", cfg.Planner.BookingPolicy)
	assert.Equal(t, 5*time.Second, cfg.Planner.OracleTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestUseMockLLMOverride(t *testing.T) {
	t.Setenv("TRIPWISE_MODE", "gcp")
	t.Setenv("TRIPWISE_GCP_PROJECT", "tripwise-dev")
	t.Setenv("TRIPWISE_USE_MOCK_LLM", "true")

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	assert.True(t, cfg.UseMockLLM)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
planner:
  home_city: Mumbai
  lead_days: 7
log:
  format: text
`), 0o600))

	cfg, err := config.Load(config.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "Mumbai", cfg.Planner.HomeCity)
	assert.Equal(t, 7, cfg.Planner.LeadDays)
	assert.Equal(t, "text", cfg.Log.Format)

	_, err = config.Load(config.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"gcp without project": {"TRIPWISE_MODE": "gcp"},
		"unknown backend":     {"TRIPWISE_STORAGE_BACKEND": "postgres"},
		"firestore local":     {"TRIPWISE_STORAGE_BACKEND": "firestore"},
		"unknown policy":      {"TRIPWISE_PLANNER_BOOKING_POLICY": "retry"},
		"bad jitter":          {"TRIPWISE_INVENTORY_PRICE_JITTER": "1.5"},
		"bad port":            {"TRIPWISE_PORT": "http"},
		"real llm no project": {"TRIPWISE_USE_MOCK_LLM": "false"},
		"unknown mode":        {"TRIPWISE_MODE": "cloud"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.Load(config.New(), "")
			assert.Error(t, err)
		})
	}
}
