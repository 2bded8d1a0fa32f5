package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// getSimpleText and getPassword point to the interactive input helpers and
// are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register creates an account. It does not log the new user in.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	if err := a.client.Register(ctx, userName, password); err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "User created.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, userName, password); err != nil {
		return a.report(err)
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Successfully logged in.")
	return nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.client.Refresh(ctx); err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "New token issued.")
	return nil
}

// Logout revokes the refresh token on the server.
func (a *App) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		return a.report(err)
	}

	a.userName = ""
	fmt.Fprintln(a.out, "Successfully logged out.")
	return nil
}

// Tokens prints the current token pair.
func (a *App) Tokens(context.Context) error {
	t := a.client.Tokens()
	fmt.Fprintf(a.out, "access_token:  %s\nrefresh_token: %s\n", t.AccessToken, t.RefreshToken)
	return nil
}

func (a *App) report(err error) error {
	fmt.Fprintf(a.out, "Error: %s\n", err.Error())
	return err
}
