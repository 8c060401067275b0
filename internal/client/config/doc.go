// Package config loads runtime configuration for the authctl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment: GOPHGATE_SERVER_ADDR and GOPHGATE_TOKEN.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string         address:port of the gophgate gRPC endpoint
//	-timeout duration per-call deadline
//	-token string     bearer token for protected commands
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "timeout": "5s"
//	}
//
// The token is never read from the JSON file.
package config
