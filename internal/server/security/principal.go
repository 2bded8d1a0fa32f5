// Package security carries the authenticated principal of a request through
// context.Context and implements the authority checks the auth flows rely on.
package security

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Principal is the identity a request was authenticated as, together with the
// bearer token that authenticated it.
type Principal struct {
	User  *models.User
	Token string
}

// Name returns the username of the principal.
func (p *Principal) Name() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.UserName
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// RequireAuthority fails with common.ErrAccessDenied unless the request is
// authenticated as a user holding authority.
func RequireAuthority(ctx context.Context, authority string) error {
	p, ok := PrincipalFromContext(ctx)
	if !ok || !p.User.HasAuthority(authority) {
		return common.ErrAccessDenied
	}
	return nil
}
