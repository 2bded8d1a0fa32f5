package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/dmitrijs2005/authkeeper/internal/server/apierror"
	"github.com/dmitrijs2005/authkeeper/internal/server/security"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.TokenResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, apierror.MsgMalformedRequest)
	}

	tokens, err := s.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.TokenResponse{
		Message:      apierror.MsgLoggedIn,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *pb.LogoutRequest) (*pb.MessageResponse, error) {
	if err := s.auth.Logout(ctx, bearer(ctx)); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.MessageResponse{Message: apierror.MsgLoggedOut}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, _ *pb.RefreshRequest) (*pb.TokenResponse, error) {
	tokens, err := s.auth.Refresh(ctx, bearer(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.TokenResponse{
		Message:      apierror.MsgTokenIssued,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	s.logger.Info(ctx, "Registration request", "username", req.Username)

	if req.Username == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, apierror.MsgMalformedRequest)
	}

	user, err := s.users.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", user.UserName, "id", user.ID)
	return &pb.RegisterResponse{Id: user.ID, Username: user.UserName}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}

// bearer is the token the principal authenticated with, or "" when anonymous.
func bearer(ctx context.Context) string {
	if p, ok := security.PrincipalFromContext(ctx); ok {
		return p.Token
	}
	return ""
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	problem := apierror.FromError(err)

	var code codes.Code
	switch problem.Class {
	case apierror.Unauthorized:
		code = codes.Unauthenticated
	case apierror.Conflict:
		code = codes.AlreadyExists
	case apierror.BadRequest:
		code = codes.InvalidArgument
	default:
		code = codes.Internal
		s.logger.Error(ctx, "request failed", "error", err.Error())
	}

	return status.Error(code, problem.Message)
}
