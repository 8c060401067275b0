package client

import (
	"context"

	gs "github.com/dmitrijs2005/gophgate/internal/server/grpc"
)

// Client is the API authctl commands are written against.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	SignUp(ctx context.Context, email, password, role string) (*gs.ProfileResponse, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	WhoAmI(ctx context.Context) (*gs.WhoAmIResponse, error)
	GetUser(ctx context.Context, id string) (*gs.ProfileResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]gs.ProfileResponse, error)
	UpdateUser(ctx context.Context, req *gs.UpdateUserRequest) (*gs.ProfileResponse, error)
	DeleteUser(ctx context.Context, id string) error
}
