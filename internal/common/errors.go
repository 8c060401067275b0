// Package common defines shared constants and sentinel errors used across
// the server and the CLI. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// ErrorConfiguration marks deployment misconfiguration (e.g. a missing
	// signing secret). It is fatal at startup and never caused by a caller.
	ErrorConfiguration = errors.New("configuration error")

	// Authentication gate outcomes.
	ErrorMissingCredential = errors.New("missing or malformed authentication token")
	ErrorExpiredCredential = errors.New("token expired")
	ErrorInvalidCredential = errors.New("invalid credential")

	// Authorization gate outcomes.
	ErrorInsufficientRole = errors.New("insufficient role")

	// Sign-up outcomes.
	ErrorDuplicateCredential      = errors.New("duplicate credential")
	ErrorCredentialCreationFailed = errors.New("credential creation failed")

	// Input validation.
	ErrorValidation = errors.New("validation error")
)
