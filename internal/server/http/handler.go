package http

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/server/apierror"
	"github.com/dmitrijs2005/authkeeper/internal/server/security"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (s *HTTPServer) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, apierror.MsgMalformedRequest, nil)
		return
	}

	tokens, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, apierror.MsgLoggedIn, TokenPayload{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// POST /api/auth/logout, bearer = refresh token
func (s *HTTPServer) logout(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.auth.Logout(ctx, bearer(ctx)); err != nil {
		s.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, apierror.MsgLoggedOut, nil)
}

// POST /api/auth/refresh, bearer = refresh token
func (s *HTTPServer) refresh(c *gin.Context) {
	ctx := c.Request.Context()

	tokens, err := s.auth.Refresh(ctx, bearer(ctx))
	if err != nil {
		s.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, apierror.MsgTokenIssued, TokenPayload{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// POST /users/add
func (s *HTTPServer) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, apierror.MsgMalformedRequest, nil)
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, apierror.MsgRegistered, UserPayload{ID: user.ID, Username: user.UserName})
}

// DELETE /api/admin/refresh-tokens, ADMIN only
func (s *HTTPServer) resetRefreshTokens(c *gin.Context) {
	if err := s.auth.ResetRefreshTokens(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, apierror.MsgTokensReset, nil)
}

func (s *HTTPServer) ping(c *gin.Context) {
	respond(c, http.StatusOK, "OK", nil)
}

func bearer(ctx context.Context) string {
	if p, ok := security.PrincipalFromContext(ctx); ok {
		return p.Token
	}
	return ""
}
