package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against for unknown users so that a failed login takes
// about as long whether or not the username exists.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("authkeeper-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

// IdentityService resolves usernames to users and checks their passwords.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager) *IdentityService {
	return &IdentityService{db: db, repomanager: m}
}

// ResolveByUsername returns common.ErrorNotFound for unknown usernames.
func (s *IdentityService) ResolveByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: resolve user: %w", common.ErrorInternal, err)
	}
	return user, nil
}

// VerifyPassword returns the user when password matches the stored hash.
// Unknown users and wrong passwords both yield common.ErrBadCredentials.
func (s *IdentityService) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.ResolveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, common.ErrBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrBadCredentials
	}
	return user, nil
}
