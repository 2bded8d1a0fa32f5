package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Tokens is the pair handed out by a successful login.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type GRPCClient struct {
	conn    *grpc.ClientConn
	client  pb.AuthServiceClient
	timeout time.Duration

	mu     sync.Mutex
	tokens Tokens
}

func withBearer(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewAuthKeeperClient prepares a connection to endpoint. The connection is
// established lazily on the first call.
func NewAuthKeeperClient(endpoint string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{timeout: timeout}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.timeoutInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewAuthServiceClient(conn)
	return c, nil
}

func (c *GRPCClient) Register(ctx context.Context, userName string, password []byte) error {
	_, err := c.client.Register(ctx, &pb.RegisterRequest{Username: userName, Password: string(password)})
	if err != nil {
		return c.mapError(err)
	}
	return nil
}

// Login authenticates anonymously and stores the returned token pair.
func (c *GRPCClient) Login(ctx context.Context, userName string, password []byte) error {
	resp, err := c.client.Login(ctx, &pb.LoginRequest{Username: userName, Password: string(password)})
	if err != nil {
		return c.mapError(err)
	}

	c.setTokens(Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	return nil
}

// Refresh presents the stored refresh token and keeps the new access token.
func (c *GRPCClient) Refresh(ctx context.Context) error {
	tokens := c.Tokens()
	if tokens.RefreshToken == "" {
		return ErrNotLoggedIn
	}

	resp, err := c.client.Refresh(withBearer(ctx, tokens.RefreshToken), &pb.RefreshRequest{})
	if err != nil {
		return c.mapError(err)
	}

	c.setTokens(Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	return nil
}

// Logout revokes the stored refresh token and forgets the session.
func (c *GRPCClient) Logout(ctx context.Context) error {
	tokens := c.Tokens()
	if tokens.RefreshToken == "" {
		return ErrNotLoggedIn
	}

	if _, err := c.client.Logout(withBearer(ctx, tokens.RefreshToken), &pb.LogoutRequest{}); err != nil {
		return c.mapError(err)
	}

	c.setTokens(Tokens{})
	return nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	if _, err := c.client.Ping(ctx, &pb.PingRequest{}); err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *GRPCClient) Tokens() Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *GRPCClient) setTokens(t Tokens) {
	c.mu.Lock()
	c.tokens = t
	c.mu.Unlock()
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrConflict, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("server error: %s", st.Message())
	}
}
