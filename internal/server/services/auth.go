// Package services contains server-side business logic: resolving identities,
// the refresh-token lifecycle, the login/logout/refresh flows and user
// registration.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/security"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// CredentialVerifier checks a username/password pair.
type CredentialVerifier interface {
	VerifyPassword(ctx context.Context, username, password string) (*models.User, error)
}

// RefreshTokenLifecycle is the part of RefreshTokenService the auth flows use.
type RefreshTokenLifecycle interface {
	Issue(ctx context.Context, user *models.User) (string, error)
	IsValid(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
	Reset(ctx context.Context) error
}

// AuthService implements login, logout and refresh on top of the request
// principal carried in the context.
type AuthService struct {
	credentials    CredentialVerifier
	refreshTokens  RefreshTokenLifecycle
	codec          auth.Codec
	accessValidity time.Duration
	logger         logging.Logger
}

func NewAuthService(cv CredentialVerifier, rt RefreshTokenLifecycle, codec auth.Codec, accessValidity time.Duration, l logging.Logger) *AuthService {
	return &AuthService{
		credentials:    cv,
		refreshTokens:  rt,
		codec:          codec,
		accessValidity: accessValidity,
		logger:         l.With("module", "auth_service"),
	}
}

// Login checks the credentials and returns a fresh access token plus a newly
// issued refresh token. Requests that are already authenticated are refused.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if _, ok := security.PrincipalFromContext(ctx); ok {
		return nil, common.ErrAlreadyAuthenticated
	}

	user, err := s.credentials.VerifyPassword(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrBadCredentials) {
			s.logger.Info(ctx, "login rejected", "username", username)
		}
		return nil, err
	}

	access, err := s.codec.Mint(user.UserName, s.accessValidity)
	if err != nil {
		return nil, fmt.Errorf("%w: mint access token: %w", common.ErrorInternal, err)
	}

	refresh, err := s.refreshTokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "login succeeded", "username", user.UserName)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout revokes the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, bearer string) error {
	if err := security.RequireAuthority(ctx, common.AuthorityUser); err != nil {
		return err
	}

	if err := s.refreshTokens.Revoke(ctx, bearer); err != nil {
		return err
	}

	p, _ := security.PrincipalFromContext(ctx)
	s.logger.Info(ctx, "logout succeeded", "username", p.Name())
	return nil
}

// Refresh mints a new access token for the principal when bearer is a valid
// refresh token. The refresh token itself is handed back unchanged.
func (s *AuthService) Refresh(ctx context.Context, bearer string) (*TokenPair, error) {
	if err := security.RequireAuthority(ctx, common.AuthorityUser); err != nil {
		return nil, err
	}

	ok, err := s.refreshTokens.IsValid(ctx, bearer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidRefreshToken
	}

	p, _ := security.PrincipalFromContext(ctx)
	access, err := s.codec.Mint(p.Name(), s.accessValidity)
	if err != nil {
		return nil, fmt.Errorf("%w: mint access token: %w", common.ErrorInternal, err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: bearer}, nil
}

// ResetRefreshTokens drops every stored refresh token. Only principals with
// the ADMIN authority may do this.
func (s *AuthService) ResetRefreshTokens(ctx context.Context) error {
	if err := security.RequireAuthority(ctx, common.AuthorityAdmin); err != nil {
		return err
	}

	if err := s.refreshTokens.Reset(ctx); err != nil {
		return err
	}

	p, _ := security.PrincipalFromContext(ctx)
	s.logger.Warn(ctx, "refresh tokens reset", "username", p.Name())
	return nil
}
