// Package client talks to the gophgate AuthService over gRPC.
//
// GRPCClient manages the connection, attaches the bearer token to every
// call through a unary interceptor and maps gRPC status codes to the
// sentinel errors in errors.go (ErrUnavailable, ErrUnauthorized,
// ErrForbidden, ErrConflict, ErrNotFound, ErrRejected). The server's fixed
// status message is kept in the wrapped error text.
package client
