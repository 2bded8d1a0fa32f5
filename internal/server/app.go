// Package server wires configuration, storage, services and transports into
// the runnable authkeeper server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/security"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/authkeeper/internal/server/http"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	users   *services.UserService
	tokens  *services.RefreshTokenService
	servers map[string]runner
}

// NewApp opens the database, applies migrations and builds the services and
// transports. The caller owns the returned App and must call Close.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, db, repomanager.NewPostgresRepositoryManager(), logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	codec := auth.NewJWTCodec([]byte(c.SecretKey))

	users := services.NewUserService(db, rm)
	identities := services.NewIdentityService(db, rm)
	tokens := services.NewRefreshTokenService(db, rm, codec, c.RefreshTokenValidityDuration)
	authSvc := services.NewAuthService(identities, tokens, codec, c.AccessTokenValidityDuration, logger)
	authenticator := security.NewAuthenticator(codec, identities)

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		users:  users,
		tokens: tokens,
		servers: map[string]runner{
			"http": hs.NewHTTPServer(c.EndpointAddrHTTP, logger, authSvc, users, authenticator),
			"grpc": gs.NewGRPCServer(c.EndpointAddrGRPC, logger, authSvc, users, authenticator),
		},
	}

	if err := app.bootstrapAdmin(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (app *App) bootstrapAdmin(ctx context.Context) error {
	if app.config.AdminUserName == "" || app.config.AdminPassword == "" {
		return nil
	}

	_, created, err := app.users.EnsureUser(ctx, app.config.AdminUserName, app.config.AdminPassword,
		common.AuthorityUser, common.AuthorityAdmin)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		app.logger.Info(ctx, "Bootstrap admin created", "username", app.config.AdminUserName)
	}
	return nil
}

// Run starts every transport and blocks until ctx is cancelled or one of them
// fails. The first failure stops the others and is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for name, srv := range app.servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx); err != nil {
				app.logger.Error(ctx, "server failed", "server", name, "error", err.Error())
				once.Do(func() { firstErr = fmt.Errorf("%s server: %w", name, err) })
				cancel()
			}
		}()
	}

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return firstErr
}

func (app *App) Close() error {
	return app.db.Close()
}
