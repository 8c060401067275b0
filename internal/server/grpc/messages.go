package grpc

import (
	"time"

	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	AccessToken string `json:"accessToken"`
}

type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type GetUserRequest struct {
	ID string `json:"id"`
}

type ListUsersRequest struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

type ListUsersResponse struct {
	Users []ProfileResponse `json:"users"`
}

// UpdateUserRequest changes the fields that are set.
type UpdateUserRequest struct {
	ID       string  `json:"id"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type DeleteUserRequest struct {
	ID string `json:"id"`
}

type DeleteUserResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func toProfileResponse(p *models.Profile) *ProfileResponse {
	return &ProfileResponse{ID: p.ID, Email: p.Email, Role: p.Role, CreatedAt: p.CreatedAt}
}
