package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"qrzbuddy/internal/components/configutil"
	"qrzbuddy/internal/components/telemetry"
	"qrzbuddy/internal/js8call"
	"qrzbuddy/internal/lookup"
	"qrzbuddy/internal/qrz"
)

const configName = "qrzbuddy.json5"

type Js8CallConfig struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
}

type StationConfig struct {
	Callsign string `json:"callsign"`
	Grid     string `json:"grid"`
}

type Config struct {
	BaseUrl string `json:"base_url"`
	Agent   string `json:"agent"`
	// Database is the keychain database path, ":memory:" keeps nothing
	// between runs.
	Database                   string  `json:"database"`
	RetryCeiling               int     `json:"retry_ceiling"`
	ContinueWithoutCredentials bool    `json:"continue_without_credentials"`
	RequestTimeout             int     `json:"request_timeout"`
	RequestsPerSecond          float64 `json:"requests_per_second"`
	SessionLifetime            int     `json:"session_lifetime"`

	Js8Call   Js8CallConfig    `json:"js8call"`
	Station   StationConfig    `json:"station"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func (c *Config) applyDefaults() {
	if c.BaseUrl == "" {
		c.BaseUrl = qrz.DefaultEndpoint
	}
	if c.Agent == "" {
		c.Agent = "qrzbuddy"
	}
	if c.Database == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			c.Database = ":memory:"
		} else {
			c.Database = filepath.Join(dir, "qrzbuddy", "keychain.db")
		}
	}
	if c.RetryCeiling <= 0 {
		c.RetryCeiling = lookup.DefaultRetryCeiling
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 2
	}
	if c.SessionLifetime <= 0 {
		c.SessionLifetime = int(qrz.DefaultSessionLifetime / time.Hour)
	}
	if c.Js8Call.Address == "" {
		c.Js8Call.Address = js8call.DefaultAddress
	}
}

func (c Config) clientOptions() qrz.ClientOptions {
	return qrz.ClientOptions{
		Endpoint:          c.BaseUrl,
		Agent:             c.Agent,
		Timeout:           time.Duration(c.RequestTimeout) * time.Second,
		RequestsPerSecond: c.RequestsPerSecond,
		SessionLifetime:   time.Duration(c.SessionLifetime) * time.Hour,
	}
}

// loadConfig reads `path`, or searches for qrzbuddy.json5 from the working
// directory upwards when it is empty. Not finding a config while searching
// means defaults.
func loadConfig(path string) (Config, error) {
	if path != "" {
		cfg, err := configutil.ReadConfig[Config](path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		cfg.applyDefaults()
		return cfg, nil
	}

	cfg, err := configutil.ReadRecursively[Config](configName)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func databaseDir(path string) string {
	if path == ":memory:" {
		return "."
	}
	return filepath.Dir(path)
}
