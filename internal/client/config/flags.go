package config

import (
	"flag"
	"os"
	"time"

	"github.com/cybermorph/morphcli/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   base URL of the scanning backend (default from Config)
//	-d string   client data directory (default from Config)
//	-t int      request timeout in seconds (default from Config)
//	-r float    transport rate limit, requests per second
//	-w int      watch poll interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-d", "-t", "-r", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "s", cfg.ServerBaseURL, "base URL of the scanning backend")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "client data directory")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.Float64Var(&cfg.MaxRPS, "r", cfg.MaxRPS, "transport rate limit (requests per second)")
	watchInterval := fs.Int("w", int(cfg.WatchInterval.Seconds()), "watch poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.WatchInterval = time.Duration(*watchInterval) * time.Second
}
