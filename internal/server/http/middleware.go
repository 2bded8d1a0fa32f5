package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/apierror"
	"github.com/dmitrijs2005/authkeeper/internal/server/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "http request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *HTTPServer) recovered(c *gin.Context, err any) {
	s.logger.Error(c.Request.Context(), "panic recovered", "error", err, "path", c.Request.URL.Path)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Message: apierror.MsgUnexpected})
}

// authentication attaches the principal named by a valid bearer credential.
// Missing or unusable credentials leave the request anonymous.
func (s *HTTPServer) authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := security.ExtractBearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		p, err := s.authenticator.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) {
				s.logger.Debug(ctx, "ignoring invalid bearer", "error", err.Error())
				c.Next()
				return
			}
			s.respondError(c, err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(security.WithPrincipal(ctx, p))
		c.Next()
	}
}
