// Package models holds the records shared by the store, the service layer
// and the transports.
package models

import (
	"time"

	"github.com/dmitrijs2005/gophgate/internal/server/auth"
)

// User is a credential record. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is the public view of a User.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile strips the digest.
func (u *User) Profile() *Profile {
	return &Profile{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// UserUpdate carries the fields of a partial account change; nil fields
// are left as they are.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// Empty reports whether no field is set.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Password == nil && u.Role == nil
}
