// Package services contains the application services for the CyberMorph
// client: thin glue between the API surface and the session manager.
package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cybermorph/morphcli/internal/client/api"
	"github.com/cybermorph/morphcli/internal/client/models"
	"github.com/cybermorph/morphcli/internal/client/session"
)

// AuthService defines the account operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server, then establish a local session
//     from the issued token.
//   - Register: create a new account on the server (no session change).
//   - Logout: discard the local session unconditionally.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username, password string, remember bool) (*session.Identity, error)
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
}

type authService struct {
	backend  api.Backend
	sessions *session.Manager
}

// NewAuthService constructs an AuthService bound to the given backend and
// session manager.
func NewAuthService(backend api.Backend, sessions *session.Manager) AuthService {
	return &authService{backend: backend, sessions: sessions}
}

// Login exchanges the credentials for a token and hands it to the session
// manager. The server response's explicit fields (user id, role) travel with
// the token so they take precedence over whatever the token claims say.
func (a *authService) Login(ctx context.Context, username, password string, remember bool) (*session.Identity, error) {
	resp, err := a.backend.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	creds := session.Credentials{
		Token:    resp.AccessToken,
		Username: username,
		Role:     resp.Role,
		Remember: remember,
	}
	if resp.UserID != 0 {
		creds.UserID = strconv.FormatInt(resp.UserID, 10)
	}

	if err := a.sessions.Login(ctx, creds); err != nil {
		return nil, fmt.Errorf("session error: %w", err)
	}

	identity, ok := a.sessions.Current()
	if !ok {
		// The manager refuses tokens it cannot decode or that are already
		// expired; surface that as a failed login instead of a half-session.
		return nil, fmt.Errorf("server issued an unusable token")
	}
	return &identity, nil
}

// Register creates the account. The caller logs in separately; the server
// does not issue a token on registration.
func (a *authService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	user, err := a.backend.Register(ctx, username, email, password)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return user, nil
}

// Logout discards the local session. It succeeds even when nobody is logged
// in; only storage I/O failures propagate.
func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.Logout(ctx)
}
