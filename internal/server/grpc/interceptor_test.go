package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/security"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestServer(a *fakeAuthenticator) *GRPCServer {
	return NewGRPCServer("", logging.Nop{}, &fakeAuth{}, &fakeUsers{}, a)
}

var info = &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Logout_FullMethodName}

func incoming(header string) context.Context {
	md := metadata.New(map[string]string{common.AuthorizationHeaderName: header})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestInterceptor_NoMetadata_Anonymous(t *testing.T) {
	s := newTestServer(&fakeAuthenticator{err: errors.New("must not be called")})

	var gotPrincipal bool
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		_, gotPrincipal = security.PrincipalFromContext(ctx)
		return "ok", nil
	}

	resp, err := s.authenticationInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" || gotPrincipal {
		t.Fatalf("unexpected: resp=%v principal=%v", resp, gotPrincipal)
	}
}

func TestInterceptor_NonBearerScheme_Anonymous(t *testing.T) {
	s := newTestServer(&fakeAuthenticator{err: errors.New("must not be called")})

	called := false
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		called = true
		return nil, nil
	}

	if _, err := s.authenticationInterceptor(incoming("Basic abc"), nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("handler was not called")
	}
}

func TestInterceptor_InvalidToken_Anonymous(t *testing.T) {
	s := newTestServer(&fakeAuthenticator{err: fmt.Errorf("%w: nope", common.ErrInvalidToken)})

	var gotPrincipal bool
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		_, gotPrincipal = security.PrincipalFromContext(ctx)
		return "ok", nil
	}

	if _, err := s.authenticationInterceptor(incoming("Bearer junk"), nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPrincipal {
		t.Fatal("invalid bearer must not produce a principal")
	}
}

func TestInterceptor_ValidToken_SetsPrincipal(t *testing.T) {
	p := &security.Principal{User: &models.User{UserName: "admin"}, Token: "tok"}
	s := newTestServer(&fakeAuthenticator{principal: p})

	var got *security.Principal
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got, _ = security.PrincipalFromContext(ctx)
		return "ok", nil
	}

	if _, err := s.authenticationInterceptor(incoming("Bearer tok"), nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p {
		t.Fatalf("principal not propagated: got %+v", got)
	}
}

func TestInterceptor_LookupFailure_Internal(t *testing.T) {
	s := newTestServer(&fakeAuthenticator{err: errors.New("db down")})

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	_, err := s.authenticationInterceptor(incoming("Bearer tok"), nil, info, h)
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", status.Code(err))
	}
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer(&fakeAuthenticator{})

	want := status.Error(codes.InvalidArgument, "x")
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "resp", want
	}

	resp, err := s.loggingInterceptor(context.Background(), nil, info, h)
	if resp != "resp" || err != want {
		t.Fatalf("unexpected: resp=%v err=%v", resp, err)
	}
}
