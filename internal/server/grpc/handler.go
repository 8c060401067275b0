package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/server/gate"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) SignUp(ctx context.Context, req *SignUpRequest) (*ProfileResponse, error) {

	p, err := s.users.SignUp(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateCredential) {
			return nil, status.Error(codes.AlreadyExists, "email already registered")
		}
		s.logger.Info(ctx, "sign-up rejected", "error", err)
		return nil, status.Error(codes.InvalidArgument, "could not create user")
	}

	return toProfileResponse(p), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *SignInRequest) (*SignInResponse, error) {

	token, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredential) {
			return nil, status.Error(codes.Unauthenticated, "invalid email or password")
		}
		s.logger.Error(ctx, "sign-in failed", "error", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}

	return &SignInResponse{AccessToken: token}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *WhoAmIRequest) (*WhoAmIResponse, error) {
	claims, ok := gate.ClaimsFromContext(ctx)
	if !ok {
		r := gate.RejectionFor(common.ErrorMissingCredential)
		return nil, status.Error(r.GRPCCode, r.Message)
	}

	resp := &WhoAmIResponse{UserID: claims.UserID(), Email: claims.Email, Role: claims.Role}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return resp, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *GetUserRequest) (*ProfileResponse, error) {

	p, err := s.users.GetUser(ctx, req.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.NotFound, "user not found")
		}
		return nil, status.Error(codes.Internal, "internal server error")
	}

	return toProfileResponse(p), nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *ListUsersRequest) (*ListUsersResponse, error) {

	list, err := s.users.ListUsers(ctx, req.Page, req.Limit)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}

	resp := &ListUsersResponse{Users: make([]ProfileResponse, 0, len(list))}
	for i := range list {
		resp.Users = append(resp.Users, *toProfileResponse(&list[i]))
	}
	return resp, nil
}

func (s *GRPCServer) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*ProfileResponse, error) {
	claims, ok := gate.ClaimsFromContext(ctx)
	if !ok {
		r := gate.RejectionFor(common.ErrorMissingCredential)
		return nil, status.Error(r.GRPCCode, r.Message)
	}

	p, err := s.users.UpdateUser(ctx, claims, req.ID, models.UserUpdate{Email: req.Email, Password: req.Password, Role: req.Role})
	if err != nil {
		return nil, s.changeError(ctx, err)
	}

	return toProfileResponse(p), nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *DeleteUserRequest) (*DeleteUserResponse, error) {
	claims, ok := gate.ClaimsFromContext(ctx)
	if !ok {
		r := gate.RejectionFor(common.ErrorMissingCredential)
		return nil, status.Error(r.GRPCCode, r.Message)
	}

	if err := s.users.DeleteUser(ctx, claims, req.ID); err != nil {
		return nil, s.changeError(ctx, err)
	}

	return &DeleteUserResponse{Success: true, ID: req.ID}, nil
}

// changeError maps UpdateUser and DeleteUser failures to status errors.
func (s *GRPCServer) changeError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorMissingCredential), errors.Is(err, common.ErrorInsufficientRole):
		r := gate.RejectionFor(err)
		return status.Error(r.GRPCCode, r.Message)
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "user not found")
	case errors.Is(err, common.ErrorDuplicateCredential):
		return status.Error(codes.AlreadyExists, "email already registered")
	}
	s.logger.Error(ctx, "account change failed", "error", err)
	return status.Error(codes.Internal, "internal server error")
}
