package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophgate/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-g string        gRPC bind address (e.g., ":50051")
//	-a string        HTTP bind address (e.g., ":8080")
//	-store string    credential store: postgres, sqlite or memory
//	-d string        database DSN
//	-s string        token signing secret (literal or secretref:...)
//	-t duration      token lifetime (e.g., "1h")
//	-hash string     password hash algorithm: bcrypt or argon2id
//	-hash-workers n  concurrent hash computations
//	-log-level lvl   debug, info, warn or error
//
// The args are first filtered with flagx.FilterArgs so that flags owned by
// the JSON locator (-c/-config) do not break parsing.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port of the gRPC endpoint")
	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port of the HTTP endpoint")
	fs.StringVar(&config.Store, "store", config.Store, "credential store backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.DurationVar(&config.TokenLifetime, "t", config.TokenLifetime, "token lifetime")
	fs.StringVar(&config.HashAlgorithm, "hash", config.HashAlgorithm, "password hash algorithm")
	fs.IntVar(&config.HashConcurrency, "hash-workers", config.HashConcurrency, "concurrent hash computations (0 = GOMAXPROCS)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, flagx.FlagNames(fs)))
}
