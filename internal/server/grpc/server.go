package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/security"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"google.golang.org/grpc"
)

type authService interface {
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	Logout(ctx context.Context, bearer string) error
	Refresh(ctx context.Context, bearer string) (*services.TokenPair, error)
}

type userService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
}

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*security.Principal, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthServiceServer

	address       string
	auth          authService
	users         userService
	authenticator authenticator
	logger        logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as authService, us userService, an authenticator) *GRPCServer {
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		auth:          as,
		users:         us,
		authenticator: an,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authenticationInterceptor))
	pb.RegisterAuthServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
