package config

import (
	"flag"
	"io"
	"strings"
)

// parseFlags parses the global flags that precede the command. -c/-config
// is accepted here too (and ignored) since parseJson already consumed it.
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("authctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var jsonPath string
	fs.StringVar(&jsonPath, "c", "", "path to JSON config file")
	fs.StringVar(&jsonPath, "config", "", "path to JSON config file")
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-call deadline")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "bearer token")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Token = strings.TrimSpace(cfg.Token)
	return fs.Args(), nil
}
