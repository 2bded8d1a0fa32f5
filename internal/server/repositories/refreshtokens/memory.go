package refreshtokens

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// MemoryRepository keeps refresh tokens in a map. It ignores transactions and
// is meant for tests and local runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[string]models.RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]models.RefreshToken)}
}

func (r *MemoryRepository) Save(_ context.Context, rt *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rows[rt.Token]; ok {
		rt.ID = existing.ID
	} else {
		r.nextID++
		rt.ID = r.nextID
	}
	r.rows[rt.Token] = clone(rt)
	return nil
}

func (r *MemoryRepository) FindByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.rows[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := clone(&rt)
	return &out, nil
}

func (r *MemoryRepository) ExistsByToken(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rows[token]
	return ok, nil
}

func (r *MemoryRepository) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.rows[token]
	return ok && rt.IsRevoked(), nil
}

func (r *MemoryRepository) DeleteAll(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows = make(map[string]models.RefreshToken)
	return nil
}

func clone(rt *models.RefreshToken) models.RefreshToken {
	out := *rt
	if rt.RevokedAt != nil {
		at := *rt.RevokedAt
		out.RevokedAt = &at
	}
	return out
}
