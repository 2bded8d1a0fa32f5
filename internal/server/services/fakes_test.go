package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	refreshtokensrepo "github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- in-memory repositories ---

type memUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]*models.User

	createErr error
	addErr    error
	getErr    error
}

func (r *memUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byName[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	r.nextID++
	u.ID = r.nextID
	stored := *u
	r.byName[u.UserName] = &stored
	return u, nil
}

func (r *memUsersRepo) AddAuthority(_ context.Context, userID int64, authority string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return r.addErr
	}
	for _, u := range r.byName {
		if u.ID == userID {
			u.Authorities = append(u.Authorities, authority)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *memUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	out.Authorities = append([]string(nil), u.Authorities...)
	return &out, nil
}

func (r *memUsersRepo) put(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	stored := *u
	r.byName[u.UserName] = &stored
	return u
}

type memRefreshRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]*models.RefreshToken

	saveErr    error
	findErr    error
	existsErr  error
	revokedErr error
	deleteErr  error
}

func (r *memRefreshRepo) Save(_ context.Context, rt *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if existing, ok := r.rows[rt.Token]; ok {
		rt.ID = existing.ID
	} else {
		r.nextID++
		rt.ID = r.nextID
	}
	stored := *rt
	r.rows[rt.Token] = &stored
	return nil
}

func (r *memRefreshRepo) FindByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	rt, ok := r.rows[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *rt
	return &out, nil
}

func (r *memRefreshRepo) ExistsByToken(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.rows[token]
	return ok, nil
}

func (r *memRefreshRepo) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revokedErr != nil {
		return false, r.revokedErr
	}
	rt, ok := r.rows[token]
	return ok && rt.IsRevoked(), nil
}

func (r *memRefreshRepo) DeleteAll(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.rows = map[string]*models.RefreshToken{}
	return nil
}

func (r *memRefreshRepo) get(token string) (*models.RefreshToken, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.rows[token]
	if !ok {
		return nil, false
	}
	out := *rt
	return &out, true
}

type fakeRepoManager struct {
	users  *memUsersRepo
	tokens *memRefreshRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:  &memUsersRepo{byName: map[string]*models.User{}},
		tokens: &memRefreshRepo{rows: map[string]*models.RefreshToken{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.tokens }
