package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for authctl.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gophgate gRPC endpoint.
//   - Timeout: deadline applied to every remote call.
//   - Token: bearer token sent on protected calls.
type Config struct {
	ServerEndpointAddr string
	Timeout            time.Duration
	Token              string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.Timeout = 5 * time.Second
}

// LoadConfig builds a Config from args (without the program name) and the
// process environment. It returns the arguments left over after flag
// parsing, which name the command to run.
func LoadConfig(args []string) (*Config, []string, error) {
	return load(args, os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, nil, fmt.Errorf("config file: %w", err)
	}

	if v, ok := lookup("GOPHGATE_SERVER_ADDR"); ok && v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v, ok := lookup("GOPHGATE_TOKEN"); ok && v != "" {
		cfg.Token = v
	}

	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
