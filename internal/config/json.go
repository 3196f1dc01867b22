package config

import (
	"encoding/json"
	"os"
	"time"

	"familystock/internal/flagx"
	"familystock/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be strings like "3s" or integer
// nanoseconds; after parsing, values are copied into the runtime Config.
type jsonConfig struct {
	SupabaseURL         string         `json:"supabase_url"`
	AnonKey             string         `json:"anon_key"`
	DatabaseDSN         string         `json:"database_dsn"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	OfflineOnly         bool           `json:"offline_only"`
}

// parseJSON overlays cfg with values loaded from the JSON file named by the
// -c/-config flags. With no such flag, nothing is loaded. Read or unmarshal
// errors panic; configuration is resolved once at startup and a broken file
// should stop the process.
func parseJSON(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.SupabaseURL != "" {
		cfg.SupabaseURL = jc.SupabaseURL
	}
	if jc.AnonKey != "" {
		cfg.AnonKey = jc.AnonKey
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.OfflineOnly {
		cfg.OfflineOnly = true
	}
}
