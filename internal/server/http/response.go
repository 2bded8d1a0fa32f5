package http

import (
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/server/apierror"
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every reply.
type Response struct {
	Message string `json:"message"`
	Payload any    `json:"payload"`
}

type TokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func respond(c *gin.Context, code int, message string, payload any) {
	c.JSON(code, Response{Message: message, Payload: payload})
}

// respondError writes the client-safe form of err. Unexpected errors are
// logged with their detail, which never reaches the client.
func (s *HTTPServer) respondError(c *gin.Context, err error) {
	problem := apierror.FromError(err)

	code := statusCode(problem.Class)
	if code == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"path", c.Request.URL.Path,
			"error", err.Error(),
		)
	}

	respond(c, code, problem.Message, nil)
}

func statusCode(class apierror.Class) int {
	switch class {
	case apierror.Unauthorized:
		return http.StatusUnauthorized
	case apierror.Conflict:
		return http.StatusConflict
	case apierror.BadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
