// Package config handles configuration for the client component:
// defaults, JSON overlay, environment variables, and command-line flags,
// applied in that order (later sources win).
package config

import "time"

// Config holds runtime settings for the Brospace client.
//
// Fields:
//   - ServerEndpointURL: base URL of the backend HTTP API.
//   - DatabasePath: sqlite file holding the persisted session.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerEndpointURL string        `env:"SERVER_ENDPOINT_URL"`
	DatabasePath      string        `env:"DATABASE_PATH"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT"`
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointURL = "http://localhost:8080"
	c.DatabasePath = "brospace.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, environment variables, and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
