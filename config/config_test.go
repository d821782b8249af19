package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmanzoor3/tiq-assistant/config"
	"github.com/fmanzoor3/tiq-assistant/engine"
)

func load(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := load(t)
	assert.Equal(t, "127.0.0.1:8484", cfg.ListenAddr)
	assert.Equal(t, filepath.Join(home, ".tiq-assistant"), cfg.DataDir)
	assert.Equal(t, "common", cfg.Outlook.TenantID)
	assert.Equal(t, "Europe/Istanbul", cfg.Outlook.Timezone)
	assert.Empty(t, cfg.Outlook.ClientID, "calendar source is off until a client id is configured")
	assert.DirExists(t, cfg.DataDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	// GIVEN: TIQ_ variables for both a top-level and a nested key
	// WHEN: Loading
	// THEN: Both land in the config

	t.Setenv("HOME", t.TempDir())
	t.Setenv("TIQ_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("TIQ_OUTLOOK_CLIENT_ID", "client-from-env")
	t.Setenv("TIQ_CONSULTANT_ID", "JDOE")

	cfg := load(t)
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, "client-from-env", cfg.Outlook.ClientID)
	assert.Equal(t, "JDOE", cfg.Consultant.ID)
}

func TestConfig_Paths(t *testing.T) {
	cfg := config.Config{DataDir: "/data"}
	assert.Equal(t, "/data/tiq.db", cfg.DatabasePath())
	assert.Equal(t, "/data/auth/msgraph_tokens.json", cfg.TokenPath())
}

func TestConfig_SettingsMergesOntoDefaults(t *testing.T) {
	cfg := config.Config{Consultant: config.Consultant{ID: "JDOE"}}

	s := cfg.Settings()
	assert.Equal(t, "JDOE", s.ConsultantID)
	assert.Equal(t, engine.DefaultSettings().DefaultLocation, s.DefaultLocation)
}
