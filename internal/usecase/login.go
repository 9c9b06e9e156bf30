package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/wpup/conauth/internal/domain"
	"github.com/wpup/conauth/internal/email"
	"github.com/wpup/conauth/internal/metrics"
	"github.com/wpup/conauth/internal/repository"
	"github.com/wpup/conauth/internal/session"
	"github.com/wpup/conauth/internal/token"
)

// accountResolver is the subset of EmailResolver the usecase needs.
type accountResolver interface {
	Resolve(ctx context.Context, rawEmail string) (*domain.Account, error)
}

// LoginUsecase owns the token lifecycle: issuance, redemption, consumption.
// All collaborators, including the clock and the random source, are injected.
type LoginUsecase struct {
	resolver  accountResolver
	directory repository.AccountDirectory
	mail      email.Sender
	sessions  session.Establisher
	logger    *slog.Logger

	tokenTTL    time.Duration
	linkBase    string
	serviceName string
	couchMode   bool

	now  func() time.Time
	rand io.Reader
}

// IssueResult is what a login request reports back. Link is set only in
// couch mode, where the sign-in link is surfaced instead of emailed.
type IssueResult struct {
	Link string
}

type LoginConfig struct {
	TokenTTL    time.Duration
	LinkBase    string
	ServiceName string
	CouchMode   bool
}

func NewLoginUsecase(
	resolver accountResolver,
	directory repository.AccountDirectory,
	mail email.Sender,
	sessions session.Establisher,
	cfg LoginConfig,
	logger *slog.Logger,
) *LoginUsecase {
	return &LoginUsecase{
		resolver:    resolver,
		directory:   directory,
		mail:        mail,
		sessions:    sessions,
		logger:      logger.With("component", "login_usecase"),
		tokenTTL:    cfg.TokenTTL,
		linkBase:    cfg.LinkBase,
		serviceName: cfg.ServiceName,
		couchMode:   cfg.CouchMode,
		now:         time.Now,
		rand:        nil, // token.New falls back to crypto/rand
	}
}

// WithClock overrides the time source. Test hook.
func (u *LoginUsecase) WithClock(now func() time.Time) *LoginUsecase {
	u.now = now
	return u
}

// WithRand overrides the random source. Test hook.
func (u *LoginUsecase) WithRand(r io.Reader) *LoginUsecase {
	u.rand = r
	return u
}

// RequestLoginLink resolves the address, issues a fresh token and hands the
// sign-in link to the mail gateway. An unknown address stores nothing, sends
// nothing and still succeeds: the requester must not learn whether the email
// is registered. Issuing overwrites any earlier pending token, so only the
// most recent link stays redeemable.
func (u *LoginUsecase) RequestLoginLink(ctx context.Context, rawEmail string) (*IssueResult, error) {
	acc, err := u.resolver.Resolve(ctx, rawEmail)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			u.logger.DebugContext(ctx, "login requested for unknown address")
			return &IssueResult{}, nil
		}
		return nil, fmt.Errorf("resolve email: %w", err)
	}

	encoded, err := token.New(u.rand)
	if err != nil {
		return nil, err
	}

	if err := u.directory.SetPendingToken(ctx, acc.ID, token.Hash(encoded), u.now()); err != nil {
		return nil, fmt.Errorf("store pending token: %w", err)
	}
	metrics.TokensIssued.Inc()

	link := u.linkBase + "/auth/verify?token=" + encoded

	if u.couchMode {
		return &IssueResult{Link: link}, nil
	}

	subject := fmt.Sprintf("Sign in to %s", u.serviceName)
	if err := u.mail.Send(ctx, acc.Email, subject, mailBody(link, u.tokenTTL)); err != nil {
		metrics.DeliveryFailures.Inc()
		u.logger.ErrorContext(ctx, "sign-in link delivery failed", "error", err)
		return nil, domain.ErrDeliveryFailed
	}

	return &IssueResult{}, nil
}

// Redeem exchanges a raw token from a sign-in link for a session. The claim
// consumes the token before the session is established; if establishing the
// session fails the token stays dead and the user restarts from issuance.
func (u *LoginUsecase) Redeem(ctx context.Context, rawToken string) (string, error) {
	if _, err := token.Decode(rawToken); err != nil {
		metrics.Redemptions.WithLabelValues("no_token").Inc()
		return "", domain.ErrNoToken
	}

	acc, err := u.directory.ClaimPendingToken(ctx, token.Hash(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			metrics.Redemptions.WithLabelValues("not_found").Inc()
			return "", domain.ErrTokenNotFound
		}
		return "", fmt.Errorf("claim token: %w", err)
	}

	if u.now().Sub(acc.TokenIssuedAt) > u.tokenTTL {
		metrics.Redemptions.WithLabelValues("expired").Inc()
		return "", domain.ErrTokenExpired
	}

	signed, err := u.sessions.Establish(ctx, acc)
	if err != nil {
		// Token is already consumed; never re-issue here.
		return "", fmt.Errorf("establish session: %w", err)
	}

	metrics.Redemptions.WithLabelValues("success").Inc()
	u.logger.InfoContext(ctx, "sign-in link redeemed", "login", acc.Login)
	return signed, nil
}

func mailBody(link string, ttl time.Duration) string {
	return fmt.Sprintf(
		`<p>Click the link below to sign in. It can be used once and expires in %d minutes.</p><p><a href="%s">%s</a></p><p>If you did not request this, you can ignore this email.</p>`,
		int(ttl.Minutes()), link, link,
	)
}
