// Package common defines shared constants and sentinel errors used across
// the CyberMorph client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Service-level errors (generic flow control).
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")

	// Credential errors. Both degrade to "not authenticated" inside the
	// session layer and are never shown to the user directly.
	ErrMalformedCredential = errors.New("malformed credential")
	ErrExpiredCredential   = errors.New("expired credential")

	// Validation errors caught before any network call.
	ErrNoFileSelected = errors.New("no file selected")
)
