package config

import (
	"flag"
	"os"
	"time"

	"familystock/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string   Supabase project URL
//	-k string   project anon key
//	-d string   path of the local database file
//	-i int      online check interval (seconds)
//	-offline    run without a remote, with a device-local owner id
//
// os.Args is filtered to the flags handled here, via flagx.FilterArgs, so
// parsing does not trip over flags owned by other packages.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-k", "-d", "-i", "-offline"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.SupabaseURL, "s", cfg.SupabaseURL, "supabase project url")
	fs.StringVar(&cfg.AnonKey, "k", cfg.AnonKey, "project anon key")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database file")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.BoolVar(&cfg.OfflineOnly, "offline", cfg.OfflineOnly, "offline-only mode, no remote")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
}
