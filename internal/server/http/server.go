// Package http exposes the authentication flows as a JSON REST API on gin.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/security"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type authService interface {
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	Logout(ctx context.Context, bearer string) error
	Refresh(ctx context.Context, bearer string) (*services.TokenPair, error)
	ResetRefreshTokens(ctx context.Context) error
}

type userService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
}

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*security.Principal, error)
}

type HTTPServer struct {
	address       string
	auth          authService
	users         userService
	authenticator authenticator
	logger        logging.Logger
	engine        *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, as authService, us userService, an authenticator) *HTTPServer {
	s := &HTTPServer{
		address:       a,
		logger:        l.With("module", "http_server"),
		auth:          as,
		users:         us,
		authenticator: an,
	}
	s.engine = s.newRouter()
	return s
}

// Handler returns the router, mostly for httptest.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(s.requestLogger(), gin.CustomRecovery(s.recovered), s.authentication())

	api := r.Group("/api")
	api.GET("/ping", s.ping)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", s.login)
	authGroup.POST("/logout", s.logout)
	authGroup.POST("/refresh", s.refresh)

	api.DELETE("/admin/refresh-tokens", s.resetRefreshTokens)

	r.POST("/users/add", s.register)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
