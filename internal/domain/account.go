package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound means the presented identity maps to no account.
	// Issuance callers must not surface this distinctly (email enumeration).
	ErrAccountNotFound = errors.New("account not found")

	// ErrNoToken means the redemption request carried no usable token.
	// Treated as "nothing to do", not as a failure.
	ErrNoToken = errors.New("no token presented")

	// ErrTokenNotFound covers invalid, foreign and already-consumed tokens.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExpired means the token matched but its validity window elapsed.
	ErrTokenExpired = errors.New("token expired")

	// ErrDeliveryFailed means the mail gateway could not deliver the link.
	ErrDeliveryFailed = errors.New("sign-in link could not be delivered")
)

// Account is the directory's view of a user. The directory owns the record;
// this service only reads it and maintains the two pending-token fields.
type Account struct {
	ID    string
	Login string
	Email string

	// PendingTokenHash is the SHA-256 of the currently issued sign-in token,
	// empty when no token is outstanding. At most one per account.
	PendingTokenHash string

	// TokenIssuedAt anchors the validity window. Zero when no token is pending.
	TokenIssuedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
