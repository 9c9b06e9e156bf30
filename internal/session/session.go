// Package session turns a validated account into an authenticated session.
// The token lifecycle never depends on how sessions are represented; it only
// hands over an account and gets back an opaque credential.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wpup/conauth/internal/domain"
)

const defaultSessionTTL = 24 * time.Hour

// Establisher creates a session credential for an authenticated account.
type Establisher interface {
	Establish(ctx context.Context, acc *domain.Account) (string, error)
}

// JWTEstablisher issues HS256-signed JWTs.
type JWTEstablisher struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewJWTEstablisher(key []byte) *JWTEstablisher {
	return &JWTEstablisher{key: key, ttl: defaultSessionTTL, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (e *JWTEstablisher) WithClock(now func() time.Time) *JWTEstablisher {
	e.now = now
	return e
}

func (e *JWTEstablisher) Establish(_ context.Context, acc *domain.Account) (string, error) {
	now := e.now()
	claims := jwt.MapClaims{
		"sub":   acc.ID,
		"login": acc.Login,
		"email": acc.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(e.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(e.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}
