package session_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wpup/conauth/internal/domain"
	"github.com/wpup/conauth/internal/session"
)

const testKey = "test-jwt-secret-at-least-32-chars!!"

var acc = &domain.Account{ID: "acc-1", Login: "alice", Email: "alice@co.example"}

func parse(t *testing.T, signed string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected method")
		}
		return []byte(testKey), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("session token is invalid: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("could not cast claims")
	}
	return claims
}

func TestEstablish_ClaimsCarryIdentity(t *testing.T) {
	e := session.NewJWTEstablisher([]byte(testKey))

	signed, err := e.Establish(context.Background(), acc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := parse(t, signed)
	if claims["sub"] != acc.ID {
		t.Errorf("sub = %v, want %q", claims["sub"], acc.ID)
	}
	if claims["login"] != acc.Login {
		t.Errorf("login = %v, want %q", claims["login"], acc.Login)
	}
	if claims["email"] != acc.Email {
		t.Errorf("email = %v, want %q", claims["email"], acc.Email)
	}
}

func TestEstablish_ExpiryIsAheadOfIssuedAt(t *testing.T) {
	// Truncated so the claim's unix seconds match exactly; must be current
	// or jwt.Parse rejects the token as expired.
	fixed := time.Now().Truncate(time.Second)
	e := session.NewJWTEstablisher([]byte(testKey)).WithClock(func() time.Time { return fixed })

	signed, err := e.Establish(context.Background(), acc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := parse(t, signed)
	iat := int64(claims["iat"].(float64))
	exp := int64(claims["exp"].(float64))
	if iat != fixed.Unix() {
		t.Errorf("iat = %d, want %d", iat, fixed.Unix())
	}
	if exp <= iat {
		t.Errorf("exp %d not after iat %d", exp, iat)
	}
}
