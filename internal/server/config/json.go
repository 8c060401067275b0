package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophgate/internal/flagx"
	"github.com/dmitrijs2005/gophgate/internal/timex"
)

// JsonConfig is the on-disk form of Config. It uses timex.Duration for
// interval fields, which accepts both strings such as "1h" and integer
// nanoseconds. Keys absent from the file keep their current values.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	Store            string         `json:"store"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	TokenLifetime    timex.Duration `json:"token_lifetime"`
	HashAlgorithm    string         `json:"hash_algorithm"`
	HashConcurrency  int            `json:"hash_concurrency"`
	LogLevel         string         `json:"log_level"`
	MetricsEnabled   bool           `json:"metrics_enabled"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
}

// parseJSON overlays the file named by -c / -config, if any.
func parseJSON(config *Config, args []string) error {

	jsonConfigFile := flagx.JSONConfigPath(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	c := JsonConfig{
		EndpointAddrGRPC: config.EndpointAddrGRPC,
		EndpointAddrHTTP: config.EndpointAddrHTTP,
		Store:            config.Store,
		DatabaseDSN:      config.DatabaseDSN,
		SecretKey:        config.SecretKey,
		TokenLifetime:    timex.Duration{Duration: config.TokenLifetime},
		HashAlgorithm:    config.HashAlgorithm,
		HashConcurrency:  config.HashConcurrency,
		LogLevel:         config.LogLevel,
		MetricsEnabled:   config.MetricsEnabled,
		S3Region:         config.S3Region,
		S3BaseEndpoint:   config.S3BaseEndpoint,
		S3AccessKey:      config.S3AccessKey,
		S3SecretKey:      config.S3SecretKey,
	}
	if err := json.Unmarshal(file, &c); err != nil {
		return err
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.Store = c.Store
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenLifetime = c.TokenLifetime.Duration
	config.HashAlgorithm = c.HashAlgorithm
	config.HashConcurrency = c.HashConcurrency
	config.LogLevel = c.LogLevel
	config.MetricsEnabled = c.MetricsEnabled
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	return nil
}
