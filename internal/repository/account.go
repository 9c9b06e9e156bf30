package repository

import (
	"context"
	"time"

	"github.com/wpup/conauth/internal/domain"
)

// AccountDirectory is the service's view of the externally owned user store.
// Besides lookups it carries the pending-token contract: the two token fields
// on an account are the only thing this service ever writes.
type AccountDirectory interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByLogin(ctx context.Context, login string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)

	// SetPendingToken stores the token hash and issuance time, overwriting
	// any previous pending token. Last writer wins; only the most recently
	// issued link is redeemable.
	SetPendingToken(ctx context.Context, accountID, tokenHash string, issuedAt time.Time) error

	// ClaimPendingToken clears the matching pending token and returns the
	// owning account in one atomic step. Of two concurrent claims for the
	// same hash exactly one succeeds; the other gets domain.ErrTokenNotFound.
	// The returned account still carries the pre-claim TokenIssuedAt so the
	// caller can judge the validity window.
	ClaimPendingToken(ctx context.Context, tokenHash string) (*domain.Account, error)

	// PurgeExpiredTokens clears pending tokens issued before cutoff and
	// reports how many accounts were touched.
	PurgeExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error)
}
