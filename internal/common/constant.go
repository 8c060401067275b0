// Package common contains shared constants and sentinel errors used across
// gophgate components.
package common

const (
	// AuthorizationHeaderName is the HTTP header (and lower-cased gRPC metadata
	// key) that carries the bearer token on protected requests.
	AuthorizationHeaderName = "Authorization"

	// AuthorizationMetadataKey is the gRPC metadata key for the bearer token.
	AuthorizationMetadataKey = "authorization"

	// BearerScheme is the only accepted authentication scheme.
	BearerScheme = "Bearer"
)
