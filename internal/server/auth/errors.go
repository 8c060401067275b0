package auth

import "errors"

// Verification errors returned by TokenManager.Verify. They are internal
// detail: the authentication gate collapses everything except
// ErrTokenExpired into a single invalid-credential outcome.
var (
	ErrMalformedToken   = errors.New("auth: malformed token")
	ErrInvalidSignature = errors.New("auth: invalid signature")
	ErrTokenExpired     = errors.New("auth: token expired")
	ErrMalformedClaims  = errors.New("auth: malformed claims")
)
