package cli

import (
	"context"
	"fmt"
)

// getSimpleText, getPassword, and getYesNo are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getYesNo      = GetYesNo
)

// Register prompts for a username, email, and password and attempts to create
// a new account. Registration does not log the user in; the server issues
// tokens only through login.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.auth.Register(ctx, username, email, password)
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %s\n", err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Account %q created. Use 'login' to sign in.\n", user.Username)
	return nil
}

// Login prompts for credentials and a remember choice, authenticates, and
// establishes the local session. With remember the credentials go to the
// durable tier and survive restarts; without it they live only for this run.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	remember, err := getYesNo(a.reader, "Stay signed in after restart?", a.out)
	if err != nil {
		return err
	}

	identity, err := a.auth.Login(ctx, username, password, remember)
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %s\n", err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", identity.Username, identity.Role)
	return nil
}

// Logout drops the session. Safe to call when nobody is logged in.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout failed: %s\n", err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Whoami prints the active identity, if any.
func (a *App) Whoami() {
	identity, ok := a.sessions.Current()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in")
		return
	}
	fmt.Fprintf(a.out, "%s (role %s, id %s)\n", identity.Username, identity.Role, identity.UserID)
	if identity.Expiry != nil {
		fmt.Fprintf(a.out, "Session expires %s\n", identity.Expiry.Format("2006-01-02 15:04:05 MST"))
	}
}
