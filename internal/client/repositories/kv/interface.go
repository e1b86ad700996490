// Package kv defines the key/value repository backing the session storage
// tiers, with a SQLite implementation for the durable tier and an in-memory
// implementation for the ephemeral tier.
package kv

import "context"

// Repository is a flat string key/value store. Get returns "" without error
// when the key is absent; values are never stored empty, so the two cases do
// not collide.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
