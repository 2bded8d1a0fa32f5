package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
)

type authClient interface {
	Register(ctx context.Context, userName string, password []byte) error
	Login(ctx context.Context, userName string, password []byte) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	Tokens() client.Tokens
	Close() error
}

type App struct {
	client   authClient
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewAuthKeeperClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run starts the REPL on stdin and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	printlnFn("authkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.client.Tokens().RefreshToken != ""
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return a.userName
	}
	return "anonymous"
}
