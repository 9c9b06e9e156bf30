package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/wpup/conauth/internal/domain"
	"github.com/wpup/conauth/internal/repository"
)

// domainPattern is the loose shape a shared-alias domain must have.
// Misconfigured entries are skipped, never reported.
var domainPattern = regexp.MustCompile(`^\w[\w.-]*\.\w+$`)

// EmailResolver maps a presented address to an account. A configured shared
// domain binds every mailbox at that domain to one fixed login; this is a
// deliberate trust decision for team inboxes, the local part is ignored.
type EmailResolver struct {
	directory     repository.AccountDirectory
	sharedDomains map[string]string
	logger        *slog.Logger
}

func NewEmailResolver(directory repository.AccountDirectory, sharedDomains map[string]string, logger *slog.Logger) *EmailResolver {
	return &EmailResolver{
		directory:     directory,
		sharedDomains: sharedDomains,
		logger:        logger.With("component", "email_resolver"),
	}
}

// Resolve returns the account behind rawEmail, or domain.ErrAccountNotFound.
// Absence is an expected outcome; issuance callers must answer the requester
// identically either way.
func (r *EmailResolver) Resolve(ctx context.Context, rawEmail string) (*domain.Account, error) {
	if rawEmail == "" {
		return nil, domain.ErrAccountNotFound
	}

	if login, ok := r.sharedLogin(rawEmail); ok {
		acc, err := r.directory.FindByLogin(ctx, login)
		if err == nil {
			return acc, nil
		}
		// Mapping points at a login that does not exist: drop the entry
		// silently and fall through to the exact-email path.
		r.logger.DebugContext(ctx, "shared domain maps to unknown login", "login", login)
	}

	return r.directory.FindByEmail(ctx, rawEmail)
}

// sharedLogin returns the login bound to rawEmail's domain, if any.
func (r *EmailResolver) sharedLogin(rawEmail string) (string, bool) {
	at := strings.LastIndex(rawEmail, "@")
	if at < 0 || at == len(rawEmail)-1 {
		return "", false
	}
	mailboxDomain := rawEmail[at+1:]

	for d, login := range r.sharedDomains {
		if !domainPattern.MatchString(d) || login == "" {
			continue
		}
		if strings.EqualFold(d, mailboxDomain) {
			return login, true
		}
	}
	return "", false
}
