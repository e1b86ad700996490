package session

import (
	"context"
	"sync"
	"time"

	"github.com/cybermorph/morphcli/internal/client/token"
	"github.com/cybermorph/morphcli/internal/logging"
)

// Known roles. Anything the backend has not specified collapses to RoleUser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the working projection of the authenticated session.
type Identity struct {
	Username string
	UserID   string
	Role     string
	Token    string
	Expiry   *time.Time
}

// Credentials is the input to Login. Username, UserID, and Role are optional:
// when empty, the corresponding token claims fill in, then defaults.
type Credentials struct {
	Token    string
	Username string
	UserID   string
	Role     string
	Remember bool
}

// Manager owns process-wide authentication state. It is written only by
// Init/Login/Logout and read by any number of concurrent consumers.
//
// Malformed or expired stored credentials never surface as errors; they
// degrade to the logged-out state, which is always safe. Only storage I/O
// failures propagate.
type Manager struct {
	store *Store
	now   func() time.Time
	log   logging.Logger

	mu           sync.RWMutex
	identity     *Identity
	initializing bool
}

// NewManager builds a Manager over the given store. The clock is injected so
// expiry decisions are testable; pass time.Now in production.
func NewManager(store *Store, now func() time.Time, log logging.Logger) *Manager {
	return &Manager{store: store, now: now, log: log, initializing: true}
}

// Init rehydrates the session from the store. It always completes — the
// initializing flag drops even when no token exists or the stored content is
// garbage — so UI gating never waits forever for a decision.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() { m.initializing = false }()

	fields, err := m.store.ReadAll(ctx)
	if err != nil {
		m.identity = nil
		return err
	}

	if fields.Token == "" {
		m.identity = nil
		return nil
	}

	claims, ok := token.Decode(fields.Token)
	if !ok || claims.Expired(m.now()) {
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.log.Warn(ctx, "failed to clear stale session", "error", clearErr)
		}
		m.identity = nil
		return nil
	}

	m.identity = mergeIdentity(fields.Token, claims, fields)
	m.log.Debug(ctx, "session rehydrated", "username", m.identity.Username, "role", m.identity.Role)
	return nil
}

// Login persists the credentials (durable tier when Remember, else ephemeral)
// and recomputes the identity with the same merge rule Init uses. No network
// call happens here; the transport layer already authenticated.
func (m *Manager) Login(ctx context.Context, creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tier := TierEphemeral
	if creds.Remember {
		tier = TierDurable
	}

	if err := m.store.Write(ctx, tier, Fields{
		Token:    creds.Token,
		Username: creds.Username,
		UserID:   creds.UserID,
		Role:     creds.Role,
	}); err != nil {
		return err
	}

	claims, ok := token.Decode(creds.Token)
	if !ok || claims.Expired(m.now()) {
		// A token the server just issued should decode; treat anything else
		// as not authenticated rather than erroring.
		m.log.Warn(ctx, "login supplied an unusable token")
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.log.Warn(ctx, "failed to clear session", "error", clearErr)
		}
		m.identity = nil
		return nil
	}

	m.identity = mergeIdentity(creds.Token, claims, Fields{
		Username: creds.Username,
		UserID:   creds.UserID,
		Role:     creds.Role,
	})
	return nil
}

// Logout clears both storage tiers and drops the identity. Callable at any
// time, including when already logged out.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.store.Clear(ctx)
	m.identity = nil
	return err
}

// Current returns a copy of the active identity, if any.
func (m *Manager) Current() (Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return Identity{}, false
	}
	return *m.identity, true
}

// CurrentRole projects the role of the active identity; "" when logged out.
func (m *Manager) CurrentRole() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return ""
	}
	return m.identity.Role
}

// Token returns the bearer token for outbound requests, or "" when no
// identity is held or the token has expired since login. An expired token is
// never handed to the transport.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return ""
	}
	if m.identity.Expiry != nil && m.identity.Expiry.Before(m.now()) {
		return ""
	}
	return m.identity.Token
}

// Initializing reports whether Init is still deciding the session state.
func (m *Manager) Initializing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initializing
}

// mergeIdentity builds an Identity preferring explicitly supplied values over
// token claims, with "user" as the final role fallback.
func mergeIdentity(tok string, claims *token.Claims, explicit Fields) *Identity {
	id := &Identity{
		Token:    tok,
		Username: explicit.Username,
		UserID:   explicit.UserID,
		Role:     explicit.Role,
	}
	if id.Username == "" {
		id.Username = claims.Subject
	}
	if id.UserID == "" {
		id.UserID = string(claims.UserID)
	}
	if id.Role == "" {
		id.Role = claims.Role
	}
	if id.Role == "" {
		id.Role = RoleUser
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		id.Expiry = &t
	}
	return id
}
