package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/security"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authenticationInterceptor resolves the bearer credential from the
// "authorization" metadata into a principal. Calls without a usable bearer
// proceed anonymously; the handlers decide whether that is acceptable.
func (s *GRPCServer) authenticationInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AuthorizationHeaderName)
		if len(values) > 0 {
			header = values[0]
		}
	}

	token, ok := security.ExtractBearerToken(header)
	if !ok {
		return handler(ctx, req)
	}

	p, err := s.authenticator.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			s.logger.Debug(ctx, "ignoring invalid bearer", "method", info.FullMethod, "error", err.Error())
			return handler(ctx, req)
		}
		s.logger.Error(ctx, "authentication failed", "method", info.FullMethod, "error", err.Error())
		return nil, status.Error(codes.Internal, "internal error")
	}

	return handler(security.WithPrincipal(ctx, p), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	requestID := uuid.NewString()

	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "grpc request",
		"request_id", requestID,
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
