package users

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// MemoryRepository keeps users in a map. It ignores transactions and is meant
// for tests and local runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byName map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byName: make(map[string]*models.User)}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()

	stored := *user
	stored.Authorities = nil
	r.byName[user.UserName] = &stored
	return user, nil
}

func (r *MemoryRepository) AddAuthority(_ context.Context, userID int64, authority string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byName {
		if u.ID != userID {
			continue
		}
		if !slices.Contains(u.Authorities, authority) {
			u.Authorities = append(u.Authorities, authority)
			slices.Sort(u.Authorities)
		}
		return nil
	}
	return common.ErrorNotFound
}

func (r *MemoryRepository) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	out.Authorities = slices.Clone(u.Authorities)
	return &out, nil
}
