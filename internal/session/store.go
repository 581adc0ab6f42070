// Package session persists the bearer credential used for authenticated
// gateway calls. The store holds at most one credential at a time.
package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store is the local persistent key-value store for the session credential.
type Store interface {
	// Get returns the stored credential, or "" when none is stored.
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

// Usable reports whether the token can back an authenticated call: present
// and, when it parses as a JWT with an expiry claim, not yet expired. The
// server remains authoritative; this only short-circuits obviously dead
// credentials before a network round trip.
func Usable(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// Opaque tokens are passed through as-is.
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return now.Before(exp.Time)
}
