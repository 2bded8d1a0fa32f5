package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// UserService creates users. It is not part of the token flows, which only
// ever read identities.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hashCost    int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m, hashCost: bcrypt.DefaultCost}
}

// Register creates a user holding the USER authority. A taken username yields
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	return s.create(ctx, username, password, []string{common.AuthorityUser})
}

// EnsureUser creates the user with the given authorities unless the username
// already exists. The boolean reports whether a user was created.
func (s *UserService) EnsureUser(ctx context.Context, username, password string, authorities ...string) (*models.User, bool, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, fmt.Errorf("error looking up user: %w", err)
	}

	user, err = s.create(ctx, username, password, authorities)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *UserService) create(ctx context.Context, username, password string, authorities []string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{UserName: username, PasswordHash: string(hash)}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if _, err := repo.Create(ctx, user); err != nil {
			return err
		}
		for _, a := range authorities {
			if err := repo.AddAuthority(ctx, user.ID, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	user.Authorities = append([]string(nil), authorities...)
	return user, nil
}
