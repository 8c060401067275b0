package auth

import (
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/common"
)

// Role is the closed set of roles a credential record can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleUser, RoleAdmin}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts only exact enumeration values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", common.ErrorValidation, s)
	}
	return r, nil
}

// NormalizeRole maps s onto the enumeration, falling back to RoleUser for
// anything unknown (including ""). The second result is false when the
// fallback was applied so callers can log or reject it.
func NormalizeRole(s string) (Role, bool) {
	r, err := ParseRole(s)
	if err != nil {
		return RoleUser, false
	}
	return r, true
}
