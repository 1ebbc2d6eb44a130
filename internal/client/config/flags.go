package config

import (
	"flag"
	"os"

	"github.com/mkaranov/brospace/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend HTTP API
//	-f string   path of the local session database file
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointURL, "a", cfg.ServerEndpointURL, "base URL of the backend HTTP API")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "path of the local session database file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
