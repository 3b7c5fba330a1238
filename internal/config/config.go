// Package config resolves aisle.md's storage paths and runtime settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const appDirName = "aisle.md"

// Config holds the settings shared by the server, CLI and MCP surfaces.
type Config struct {
	ListenAddr       string        `yaml:"listen_addr"`
	StoreID          string        `yaml:"store_id"`
	ListName         string        `yaml:"list_name"`
	RemindersCommand string        `yaml:"reminders_command"`
	LookupBaseURL    string        `yaml:"lookup_base_url"`
	LookupTimeout    time.Duration `yaml:"lookup_timeout"`
	Workers          int           `yaml:"workers"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ListenAddr:       ":9090",
		ListName:         "Shopping",
		RemindersCommand: "reminders",
		LookupBaseURL:    "https://mobile-api.woolworths.co.nz",
		LookupTimeout:    10 * time.Second,
		Workers:          4,
	}
}

// GetAisleDir resolves the base directory for the mirror database. AISLE_DIR
// wins, then the XDG data home, then ~/.local/share.
func GetAisleDir() string {
	if explicit := os.Getenv("AISLE_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appDirName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appDirName)
}

// GetDBPath returns the absolute path to the SQLite database file.
func GetDBPath() string {
	return filepath.Join(GetAisleDir(), "aisle.db")
}

// GetConfigPath returns AISLE_CONFIG or the XDG config file location.
func GetConfigPath() string {
	if explicit := os.Getenv("AISLE_CONFIG"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	return filepath.Join(xdg.ConfigHome, appDirName, "config.yaml")
}

// Load layers defaults, the YAML file at path (if it exists) and environment
// overrides. An empty path means GetConfigPath.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = GetConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"STORE_ID", &cfg.StoreID},
		{"AISLE_LISTEN", &cfg.ListenAddr},
		{"AISLE_LIST", &cfg.ListName},
		{"AISLE_REMINDERS_COMMAND", &cfg.RemindersCommand},
		{"AISLE_LOOKUP_URL", &cfg.LookupBaseURL},
	}
	for _, o := range overrides {
		if value := strings.TrimSpace(os.Getenv(o.env)); value != "" {
			*o.target = value
		}
	}
}

// Validate rejects settings the sync pipeline cannot run with.
func (c Config) Validate() error {
	if c.ListName == "" {
		return errors.New("config: list_name must not be empty")
	}
	if c.RemindersCommand == "" {
		return errors.New("config: reminders_command must not be empty")
	}
	if c.LookupBaseURL == "" {
		return errors.New("config: lookup_base_url must not be empty")
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("config: lookup_timeout must be positive, got %s", c.LookupTimeout)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	return nil
}
