package api

import (
	"context"
	"log"
	"time"

	"tracker-makedarun/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

// authToken reads the stored bearer token. Requests go out without an
// Authorization header when no token is stored; the server answers 401 and
// the record falls back to the queue.
func (c *Client) authToken(ctx context.Context) string {
	if c.kv == nil {
		return ""
	}
	token, err := c.kv.Get(ctx, store.KeyToken)
	if err != nil {
		return ""
	}
	if expired(token) {
		log.Printf("stored token is expired; submission will likely be rejected")
	}
	return token
}

// SetToken persists a bearer token issued by the backend.
func (c *Client) SetToken(ctx context.Context, token string) error {
	if c.kv == nil {
		return errNoStore
	}
	return c.kv.Set(ctx, store.KeyToken, token)
}

// expired inspects the token's exp claim without verifying the signature;
// only the server holds the key, this is just a courtesy check.
func expired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
