package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/apierror"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/security"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	s := newLiveStack(t)
	h := s.server.Handler()
	creds := map[string]string{"username": "admin", "password": "admin"}

	code, env := do(t, h, http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Successfully logged in.", env.Message)
	pair := env.tokens(t)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	code, env = do(t, h, http.MethodPost, "/api/auth/login", pair.AccessToken, creds)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Already logged in.", env.Message)

	// the access token verifies but was never stored as a refresh token
	code, env = do(t, h, http.MethodPost, "/api/auth/logout", pair.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apierror.MsgTokenNotFound, env.Message)

	code, env = do(t, h, http.MethodPost, "/api/auth/refresh", pair.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "RefreshToken is not valid.", env.Message)

	code, env = do(t, h, http.MethodPost, "/api/auth/refresh", pair.RefreshToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "New token issued.", env.Message)
	refreshed := env.tokens(t)
	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, refreshed.AccessToken)

	code, env = do(t, h, http.MethodPost, "/api/auth/logout", pair.RefreshToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Successfully logged out.", env.Message)
	assert.Equal(t, "null", string(env.Payload))

	row, err := s.repos.RefreshTokens(nil).FindByToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotNil(t, row.RevokedAt)

	code, env = do(t, h, http.MethodPost, "/api/auth/refresh", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "RefreshToken is not valid.", env.Message)
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newLiveStack(t).server.Handler()

	code, env := do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Bad credentials", env.Message)

	code, env = do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Bad credentials", env.Message)
}

func TestLogin_MalformedBody(t *testing.T) {
	h := newLiveStack(t).server.Handler()

	for _, body := range []any{"{not json", map[string]string{"username": "admin"}} {
		code, env := do(t, h, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, apierror.MsgMalformedRequest, env.Message)
	}
}

func TestLogin_InvalidBearerIsAnonymous(t *testing.T) {
	h := newLiveStack(t).server.Handler()

	code, _ := do(t, h, http.MethodPost, "/api/auth/login", "garbage.token.value", map[string]string{"username": "admin", "password": "admin"})
	assert.Equal(t, http.StatusOK, code)
}

func TestLogoutAndRefresh_Anonymous(t *testing.T) {
	h := newLiveStack(t).server.Handler()

	for _, path := range []string{"/api/auth/logout", "/api/auth/refresh"} {
		code, env := do(t, h, http.MethodPost, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "Access Denied", env.Message, path)
	}
}

func TestRegister(t *testing.T) {
	h := newLiveStack(t).server.Handler()
	creds := map[string]string{"username": "bob", "password": "pw"}

	code, env := do(t, h, http.MethodPost, "/users/add", "", creds)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, apierror.MsgRegistered, env.Message)
	assert.Contains(t, string(env.Payload), `"username":"bob"`)

	code, env = do(t, h, http.MethodPost, "/users/add", "", creds)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Username is already taken.", env.Message)

	code, _ = do(t, h, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusOK, code)
}

func TestResetRefreshTokens(t *testing.T) {
	s := newLiveStack(t)
	h := s.server.Handler()

	code, env := do(t, h, http.MethodPost, "/users/add", "", map[string]string{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusCreated, code, env.Message)

	_, env = do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "bob", "password": "pw"})
	bob := env.tokens(t)

	code, _ = do(t, h, http.MethodDelete, "/api/admin/refresh-tokens", bob.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	_, env = do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "admin"})
	admin := env.tokens(t)

	code, env = do(t, h, http.MethodDelete, "/api/admin/refresh-tokens", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, apierror.MsgTokensReset, env.Message)

	exists, err := s.repos.RefreshTokens(nil).ExistsByToken(context.Background(), bob.RefreshToken)
	require.NoError(t, err)
	assert.False(t, exists)

	code, _ = do(t, h, http.MethodPost, "/api/auth/refresh", bob.RefreshToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPing(t *testing.T) {
	h := newLiveStack(t).server.Handler()

	code, env := do(t, h, http.MethodGet, "/api/ping", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", env.Message)
}

// ---- fakes for failure paths ----

type fakeAuth struct {
	err   error
	panic bool
}

func (f *fakeAuth) Login(context.Context, string, string) (*services.TokenPair, error) {
	if f.panic {
		panic("kaboom")
	}
	return nil, f.err
}
func (f *fakeAuth) Logout(context.Context, string) error { return f.err }
func (f *fakeAuth) Refresh(context.Context, string) (*services.TokenPair, error) {
	return nil, f.err
}
func (f *fakeAuth) ResetRefreshTokens(context.Context) error { return f.err }

type fakeUsers struct{ err error }

func (f *fakeUsers) Register(context.Context, string, string) (*models.User, error) {
	return nil, f.err
}

type fakeAuthenticator struct{ err error }

func (f *fakeAuthenticator) Authenticate(context.Context, string) (*security.Principal, error) {
	return nil, f.err
}

func TestUnexpectedErrorsDoNotLeak(t *testing.T) {
	s := NewHTTPServer(":0", logging.Nop{}, &fakeAuth{err: errors.New("pq: connection refused")},
		&fakeUsers{err: errors.New("pq: connection refused")}, &fakeAuthenticator{})
	h := s.Handler()

	code, env := do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "a", "password": "b"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "An unexpected error occurred.", env.Message)

	code, env = do(t, h, http.MethodPost, "/users/add", "", map[string]string{"username": "a", "password": "b"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "An unexpected error occurred.", env.Message)
}

func TestAuthenticationLookupFailure(t *testing.T) {
	s := NewHTTPServer(":0", logging.Nop{}, &fakeAuth{}, &fakeUsers{}, &fakeAuthenticator{err: errors.New("db down")})

	code, env := do(t, s.Handler(), http.MethodPost, "/api/auth/logout", "tok", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, apierror.MsgUnexpected, env.Message)
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	s := NewHTTPServer(":0", logging.Nop{}, &fakeAuth{panic: true}, &fakeUsers{}, &fakeAuthenticator{})

	code, env := do(t, s.Handler(), http.MethodPost, "/api/auth/login", "", map[string]string{"username": "a", "password": "b"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, apierror.MsgUnexpected, env.Message)
}

func TestErrorClassStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{common.ErrBadCredentials, http.StatusUnauthorized},
		{common.ErrAlreadyAuthenticated, http.StatusConflict},
		{common.ErrTokenNotFound, http.StatusBadRequest},
		{common.ErrInvalidRefreshToken, http.StatusBadRequest},
	}
	for _, tt := range tests {
		s := NewHTTPServer(":0", logging.Nop{}, &fakeAuth{err: tt.err}, &fakeUsers{}, &fakeAuthenticator{})
		code, _ := do(t, s.Handler(), http.MethodPost, "/api/auth/refresh", "", nil)
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}
