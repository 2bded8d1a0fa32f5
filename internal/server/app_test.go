package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	return c
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type failingMigrations struct {
	*repomanager.InMemoryRepositoryManager
}

func (failingMigrations) RunMigrations(context.Context, *sql.DB) error {
	return errors.New("goose: no such table")
}

func TestNewApp_BootstrapsAdmin(t *testing.T) {
	c := testConfig()
	c.AdminUserName = "root"
	c.AdminPassword = "toor"

	rm := repomanager.NewInMemoryRepositoryManager()
	_, err := newApp(context.Background(), c, openSQLite(t), rm, logging.Nop{})
	require.NoError(t, err)

	u, err := rm.Users(dbx.DBTX(nil)).GetUserByLogin(context.Background(), "root")
	require.NoError(t, err)
	assert.True(t, u.HasAuthority(common.AuthorityUser))
	assert.True(t, u.HasAuthority(common.AuthorityAdmin))

	// a second start leaves the existing admin alone
	_, err = newApp(context.Background(), c, openSQLite(t), rm, logging.Nop{})
	require.NoError(t, err)
}

func TestNewApp_NoAdminConfigured(t *testing.T) {
	rm := repomanager.NewInMemoryRepositoryManager()
	_, err := newApp(context.Background(), testConfig(), openSQLite(t), rm, logging.Nop{})
	require.NoError(t, err)

	_, err = rm.Users(nil).GetUserByLogin(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestNewApp_MigrationFailure(t *testing.T) {
	rm := failingMigrations{repomanager.NewInMemoryRepositoryManager()}
	_, err := newApp(context.Background(), testConfig(), openSQLite(t), rm, logging.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := newApp(context.Background(), testConfig(), openSQLite(t), repomanager.NewInMemoryRepositoryManager(), logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestApp_RunReturnsServerFailure(t *testing.T) {
	c := testConfig()
	c.EndpointAddrGRPC = "127.0.0.1:99999"

	app, err := newApp(context.Background(), c, openSQLite(t), repomanager.NewInMemoryRepositoryManager(), logging.Nop{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "grpc server")
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after a server failed")
	}
}
