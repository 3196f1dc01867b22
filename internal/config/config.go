package config

import "time"

// Config holds runtime settings for the familystock CLI.
//
// Fields:
//   - SupabaseURL: project root URL; auth lives under /auth/v1 and data
//     under /rest/v1.
//   - AnonKey: the project's public api key, sent on every request.
//   - DatabaseDSN: path of the local SQLite database file.
//   - OnlineCheckInterval: how often the client probes remote reachability.
//   - OfflineOnly: run with a device-local owner id and no remote at all.
type Config struct {
	SupabaseURL         string
	AnonKey             string
	DatabaseDSN         string
	OnlineCheckInterval time.Duration
	OfflineOnly         bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.SupabaseURL = "http://127.0.0.1:54321"
	c.AnonKey = ""
	c.DatabaseDSN = "familystock.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.OfflineOnly = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
