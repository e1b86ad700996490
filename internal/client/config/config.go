// Package config builds the client's runtime configuration in layers:
// defaults, then environment variables, then an optional JSON file, then
// command-line flags. Later layers win.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds runtime settings for the CyberMorph CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the scanning backend (scheme + host + port).
//   - DataDir: directory for client data files (the session database).
//   - RequestTimeout: per-request HTTP timeout.
//   - MaxRPS: transport rate limit in requests per second.
//   - WatchInterval: directory poll interval in agent mode.
type Config struct {
	ServerBaseURL  string        `env:"MORPH_SERVER_URL"`
	DataDir        string        `env:"MORPH_DATA_DIR"`
	RequestTimeout time.Duration `env:"MORPH_REQUEST_TIMEOUT"`
	MaxRPS         float64       `env:"MORPH_MAX_RPS"`
	WatchInterval  time.Duration `env:"MORPH_WATCH_INTERVAL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.DataDir = ".morphcli"
	c.RequestTimeout = 30 * time.Second
	c.MaxRPS = 5
	c.WatchInterval = 5 * time.Second
}

// parseEnv overlays values from the environment. Variables that are not set
// leave the current values untouched.
func parseEnv(cfg *Config) {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		panic(err)
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present), and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
