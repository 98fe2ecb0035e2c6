package config

import (
	"flag"
	"os"
	"time"

	"github.com/discussions-app/core/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the account store service
//	-r string   base URL of the transaction relay
//	-f string   path of the local cache database
//	-w int      authorization wait timeout in seconds
//
// The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other
// components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-f", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "account store base URL")
	fs.StringVar(&cfg.RelayEndpointAddr, "r", cfg.RelayEndpointAddr, "transaction relay base URL")
	fs.StringVar(&cfg.CacheDSN, "f", cfg.CacheDSN, "local cache database path")
	authorizationTimeout := fs.Int("w", int(cfg.AuthorizationTimeout.Seconds()), "authorization wait timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AuthorizationTimeout = time.Duration(*authorizationTimeout) * time.Second
}
