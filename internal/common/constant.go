// Package common contains shared constants and sentinel errors used across
// CyberMorph client components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer token
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName carries the per-request correlation ID.
const RequestIDHeaderName = "X-Request-Id"
