// Package auth issues and verifies the signed session tokens handed out on
// sign-in, and defines the role enumeration carried inside them.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session token: the standard "sub", "iat" and
// "exp" registered claims plus the account email and role.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject, i.e. the credential record identifier.
func (c *Claims) UserID() string {
	return c.Subject
}

// HasRole reports whether the claims carry one of roles.
func (c *Claims) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

func (c *Claims) complete() bool {
	return c.Subject != "" && c.Email != "" && c.Role.Valid()
}
