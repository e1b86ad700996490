// Package token decodes the self-contained claims token issued by the
// CyberMorph backend.
//
// No signature verification happens here: the backend re-validates the token
// on every authenticated call, and the client only uses claims for UI gating
// and optimistic expiry checks. Decoding is total — a token that cannot be
// parsed is reported as absent, never as an error.
package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ID is a claim value the issuer encodes either as a JSON string or as a
// number; the backend uses numeric database IDs.
type ID string

func (i *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id claim: %w", err)
	}
	*i = ID(n.String())
	return nil
}

// Claims is the decoded payload of a credential token. The subject carries
// the username; role and user_id are CyberMorph-specific claims.
type Claims struct {
	jwt.RegisteredClaims
	Role   string `json:"role,omitempty"`
	UserID ID     `json:"user_id,omitempty"`
}

// Decode parses the claims from a credential token without verifying its
// signature. It requires exactly three non-empty dot-separated segments and a
// syntactically valid JSON payload; any other input yields (nil, false).
func Decode(tokenString string) (*Claims, bool) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, false
	}
	for _, p := range parts {
		if p == "" {
			return nil, false
		}
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// Expired reports whether the claims carry an expiry in the past relative to
// now. Claims without an expiry never expire.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Time.Before(now)
}
