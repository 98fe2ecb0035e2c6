// Package config handles configuration for the CLI client, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the account store service.
//   - RelayEndpointAddr: base URL of the transaction relay.
//   - CacheDSN: sqlite DSN of the local cache database.
//   - AuthorizationTimeout: how long a transaction waits for approval.
type Config struct {
	ServerEndpointAddr   string
	RelayEndpointAddr    string
	CacheDSN             string
	AuthorizationTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.RelayEndpointAddr = "http://127.0.0.1:9090"
	c.CacheDSN = "discussions.db"
	c.AuthorizationTimeout = 2 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
