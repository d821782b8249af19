/*
Package config loads the application configuration.

PURPOSE:
  Viper-backed configuration with three layers, later layers winning:
  built-in defaults, an optional YAML file under the data directory,
  and TIQ_-prefixed environment variables (TIQ_LISTEN_ADDR,
  TIQ_OUTLOOK_CLIENT_ID, ...).

DATA DIRECTORY:
  Everything lives under ~/.tiq-assistant by default: the SQLite
  database, cached OAuth tokens, and exported spreadsheets.

SEE ALSO:
  - cmd: flag wiring on top of this
  - engine/types.go: Settings the database row overrides at runtime
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

// Config is the full application configuration.
type Config struct {
	Env        string `mapstructure:"env"`
	ListenAddr string `mapstructure:"listen_addr"`
	DataDir    string `mapstructure:"data_dir"`
	ExportDir  string `mapstructure:"export_dir"`

	Consultant Consultant `mapstructure:"consultant"`
	Outlook    Outlook    `mapstructure:"outlook"`
}

// Consultant holds the defaults seeded into a fresh settings row.
type Consultant struct {
	ID              string `mapstructure:"id"`
	DefaultLocation string `mapstructure:"default_location"`
	DefaultActivity string `mapstructure:"default_activity"`
	MeetingActivity string `mapstructure:"meeting_activity"`
}

// Outlook holds the Microsoft Graph connection details. Empty ClientID
// disables the calendar source.
type Outlook struct {
	TenantID string `mapstructure:"tenant_id"`
	ClientID string `mapstructure:"client_id"`
	Timezone string `mapstructure:"timezone"`
}

// DatabasePath returns the SQLite file location.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "tiq.db")
}

// TokenPath returns the cached OAuth token location.
func (c Config) TokenPath() string {
	return filepath.Join(c.DataDir, "auth", "msgraph_tokens.json")
}

// Settings converts the consultant defaults into engine settings,
// falling back to the stock values for anything unset.
func (c Config) Settings() engine.Settings {
	s := engine.DefaultSettings()
	if c.Consultant.ID != "" {
		s.ConsultantID = c.Consultant.ID
	}
	if c.Consultant.DefaultLocation != "" {
		s.DefaultLocation = c.Consultant.DefaultLocation
	}
	if c.Consultant.DefaultActivity != "" {
		s.DefaultActivity = engine.ActivityCode(c.Consultant.DefaultActivity)
	}
	if c.Consultant.MeetingActivity != "" {
		s.MeetingActivity = engine.ActivityCode(c.Consultant.MeetingActivity)
	}
	return s
}

// Load reads the configuration: defaults, then an optional config.yaml
// under the data directory, then TIQ_* environment variables.
func Load() (Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".tiq-assistant")

	defaults := engine.DefaultSettings()
	v.SetDefault("env", "development")
	v.SetDefault("listen_addr", "127.0.0.1:8484")
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("export_dir", filepath.Join(dataDir, "exports"))
	v.SetDefault("consultant.id", defaults.ConsultantID)
	v.SetDefault("consultant.default_location", defaults.DefaultLocation)
	v.SetDefault("consultant.default_activity", string(defaults.DefaultActivity))
	v.SetDefault("consultant.meeting_activity", string(defaults.MeetingActivity))
	v.SetDefault("outlook.tenant_id", "common")
	v.SetDefault("outlook.timezone", "Europe/Istanbul")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("TIQ")
	// Nested keys map to underscored env names: outlook.client_id is
	// set by TIQ_OUTLOOK_CLIENT_ID.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine; a malformed one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("creating data directory: %w", err)
	}
	return cfg, nil
}
