// Package session owns client-side authentication state: a two-tier
// credential store and the manager that derives the active identity from it.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/cybermorph/morphcli/internal/client/repositories/kv"
)

// Tier selects which backing store a write lands in. Reads always consult
// both, ephemeral first.
type Tier int

const (
	// TierEphemeral lives for a single run of the client.
	TierEphemeral Tier = iota
	// TierDurable survives restarts until explicitly cleared.
	TierDurable
)

// Storage keys. These match the names the backend-issued values are known by.
const (
	keyToken    = "token"
	keyUsername = "username"
	keyUserID   = "user_id"
	keyRole     = "role"
)

// Fields carries the four stored session values. An empty string means
// "absent": Write skips empty fields, ReadAll returns "" for missing keys.
type Fields struct {
	Token    string
	Username string
	UserID   string
	Role     string
}

// Store is the two-tier session store. Tier precedence and clearing are
// centralized here so they stay atomic and testable.
type Store struct {
	ephemeral kv.Repository
	durable   kv.Repository
}

func NewStore(ephemeral, durable kv.Repository) *Store {
	return &Store{ephemeral: ephemeral, durable: durable}
}

func (s *Store) tier(t Tier) kv.Repository {
	if t == TierDurable {
		return s.durable
	}
	return s.ephemeral
}

// Write stores each non-empty field in the chosen tier. Empty fields leave
// any prior value untouched; login may legitimately supply only a subset.
func (s *Store) Write(ctx context.Context, t Tier, f Fields) error {
	repo := s.tier(t)
	for key, value := range map[string]string{
		keyToken:    f.Token,
		keyUsername: f.Username,
		keyUserID:   f.UserID,
		keyRole:     f.Role,
	} {
		if value == "" {
			continue
		}
		if err := repo.Set(ctx, key, value); err != nil {
			return fmt.Errorf("session store write: %w", err)
		}
	}
	return nil
}

// ReadAll resolves each field independently: the ephemeral value if present,
// else the durable one, else "". Field independence means the token may come
// from one tier and the username from the other when logins mixed tiers;
// that split-sourcing is accepted behavior, not repaired here.
func (s *Store) ReadAll(ctx context.Context) (Fields, error) {
	var f Fields
	for key, dst := range map[string]*string{
		keyToken:    &f.Token,
		keyUsername: &f.Username,
		keyUserID:   &f.UserID,
		keyRole:     &f.Role,
	} {
		v, err := s.ephemeral.Get(ctx, key)
		if err != nil {
			return Fields{}, fmt.Errorf("session store read: %w", err)
		}
		if v == "" {
			v, err = s.durable.Get(ctx, key)
			if err != nil {
				return Fields{}, fmt.Errorf("session store read: %w", err)
			}
		}
		*dst = v
	}
	return f, nil
}

// Clear removes all four fields from both tiers. Both tiers are always
// attempted; errors are joined rather than short-circuiting so a failure in
// one tier cannot leave the other partially populated. Idempotent.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, repo := range []kv.Repository{s.ephemeral, s.durable} {
		for _, key := range []string{keyToken, keyUsername, keyUserID, keyRole} {
			if err := repo.Delete(ctx, key); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("session store clear: %w", errors.Join(errs...))
	}
	return nil
}
