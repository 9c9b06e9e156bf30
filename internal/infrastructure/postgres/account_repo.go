package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wpup/conauth/internal/domain"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, login, email,
	COALESCE(pending_token_hash, ''), COALESCE(token_issued_at, 'epoch'::timestamptz),
	created_at, updated_at`

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) FindByLogin(ctx context.Context, login string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE login = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, login))
}

// FindByEmail matches case-insensitively; the directory stores addresses as
// entered but looks them up folded, and resolution follows that policy.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1)`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *AccountRepository) SetPendingToken(ctx context.Context, accountID, tokenHash string, issuedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts
		 SET    pending_token_hash = $2,
		        token_issued_at    = $3,
		        updated_at         = NOW()
		 WHERE  id = $1`,
		accountID, tokenHash, issuedAt,
	)
	if err != nil {
		return fmt.Errorf("set pending token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ClaimPendingToken consumes the token and returns its owner in one statement.
// The locked SELECT re-evaluates after a concurrent claimant commits, so the
// loser of a race sees no matching row rather than a double success.
func (r *AccountRepository) ClaimPendingToken(ctx context.Context, tokenHash string) (*domain.Account, error) {
	query := `
		WITH claimed AS (
			SELECT id, token_issued_at
			FROM   accounts
			WHERE  pending_token_hash = $1
			FOR UPDATE
		)
		UPDATE accounts a
		SET    pending_token_hash = NULL,
		       token_issued_at    = NULL,
		       updated_at         = NOW()
		FROM   claimed c
		WHERE  a.id = c.id
		RETURNING a.id, a.login, a.email, ''::text, c.token_issued_at, a.created_at, a.updated_at`

	acc, err := scanAccount(r.pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("claim pending token: %w", err)
	}
	return acc, nil
}

func (r *AccountRepository) PurgeExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts
		 SET    pending_token_hash = NULL,
		        token_issued_at    = NULL,
		        updated_at         = NOW()
		 WHERE  pending_token_hash IS NOT NULL
		   AND  token_issued_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Login, &a.Email, &a.PendingTokenHash, &a.TokenIssuedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	if a.TokenIssuedAt.Equal(time.Unix(0, 0)) {
		a.TokenIssuedAt = time.Time{}
	}
	return &a, nil
}
