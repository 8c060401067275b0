package config

import (
	"fmt"
	"strconv"
	"time"
)

// parseEnv overlays GOPHGATE_* variables. JWT_SECRET is accepted as an
// alias for GOPHGATE_SECRET_KEY, which wins when both are set.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	str("GOPHGATE_GRPC_ADDR", &config.EndpointAddrGRPC)
	str("GOPHGATE_HTTP_ADDR", &config.EndpointAddrHTTP)
	str("GOPHGATE_STORE", &config.Store)
	str("GOPHGATE_DATABASE_DSN", &config.DatabaseDSN)
	str("JWT_SECRET", &config.SecretKey)
	str("GOPHGATE_SECRET_KEY", &config.SecretKey)
	str("GOPHGATE_HASH_ALGORITHM", &config.HashAlgorithm)
	str("GOPHGATE_LOG_LEVEL", &config.LogLevel)
	str("GOPHGATE_S3_REGION", &config.S3Region)
	str("GOPHGATE_S3_ENDPOINT", &config.S3BaseEndpoint)
	str("GOPHGATE_S3_ACCESS_KEY", &config.S3AccessKey)
	str("GOPHGATE_S3_SECRET_KEY", &config.S3SecretKey)

	if v, ok := lookup("GOPHGATE_TOKEN_LIFETIME"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GOPHGATE_TOKEN_LIFETIME: %w", err)
		}
		config.TokenLifetime = d
	}
	if v, ok := lookup("GOPHGATE_HASH_CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GOPHGATE_HASH_CONCURRENCY: %w", err)
		}
		config.HashConcurrency = n
	}
	if v, ok := lookup("GOPHGATE_METRICS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GOPHGATE_METRICS_ENABLED: %w", err)
		}
		config.MetricsEnabled = b
	}
	return nil
}
