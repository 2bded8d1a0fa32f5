package security

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// ExtractBearerToken returns the token from an "Authorization: Bearer <token>"
// value. The scheme is matched case-insensitively.
func ExtractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(common.BearerPrefix) ||
		!strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(common.BearerPrefix):])
	return token, token != ""
}

// IdentityResolver looks users up by username.
type IdentityResolver interface {
	ResolveByUsername(ctx context.Context, username string) (*models.User, error)
}

// Authenticator turns a bearer token into a Principal. Any token the codec
// accepts authenticates, access or refresh alike.
type Authenticator struct {
	codec      auth.Codec
	identities IdentityResolver
}

func NewAuthenticator(codec auth.Codec, identities IdentityResolver) *Authenticator {
	return &Authenticator{codec: codec, identities: identities}
}

// Authenticate returns an error matching common.ErrInvalidToken when the token
// fails verification or names an unknown user. Other errors come from the
// identity lookup.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Principal, error) {
	subject, err := a.codec.ExtractSubject(token)
	if err != nil {
		return nil, err
	}

	user, err := a.identities.ResolveByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", common.ErrInvalidToken)
		}
		return nil, err
	}

	return &Principal{User: user, Token: token}, nil
}
