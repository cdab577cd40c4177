package linking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/goliatone/go-federation"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Linker resolves a provider assertion to exactly one local account,
// creating the account and the link as needed. Each resolution runs in a
// single transaction.
type Linker struct {
	repos  federation.RepositoryManager
	logger federation.Logger
	now    func() time.Time
}

// LinkerOption configures a Linker.
type LinkerOption func(*Linker)

// WithLogger sets the linker logger.
func WithLogger(logger federation.Logger) LinkerOption {
	return func(l *Linker) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) LinkerOption {
	return func(l *Linker) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLinker creates a new Linker.
func NewLinker(repos federation.RepositoryManager, opts ...LinkerOption) *Linker {
	l := &Linker{
		repos:  repos,
		logger: defaultLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// LinkResult contains the resolved account and link metadata.
type LinkResult struct {
	Account      *federation.Account
	Link         *federation.IdentityLink
	IsNewAccount bool
	IsNewLink    bool
}

// Resolve applies the three-outcome resolution order: match by
// (provider, subject), then by email, then create. The account is always
// persisted before its link.
func (l *Linker) Resolve(ctx context.Context, assertion *Assertion) (*LinkResult, error) {
	if assertion == nil {
		return nil, ErrMissingAssertion
	}
	if l.repos == nil {
		return nil, ErrMissingStores
	}
	if err := assertion.Validate(); err != nil {
		return nil, err
	}

	var result *LinkResult
	err := l.repos.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		r, err := l.resolve(ctx, l.repos.WithTx(tx), assertion)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Linker) resolve(ctx context.Context, repos federation.RepositoryManager, a *Assertion) (*LinkResult, error) {
	now := l.now()
	accounts := repos.Accounts()
	links := repos.IdentityLinks()

	link, err := links.FindByProviderAndSubject(ctx, a.Provider, a.SubjectID)
	if err == nil && link != nil {
		return l.refreshExisting(ctx, accounts, links, link, a, now)
	}
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to find identity link: %w", err)
	}

	account, err := accounts.FindByEmail(ctx, a.Email)
	if err == nil && account != nil {
		return l.attachLink(ctx, accounts, links, account, a, now, false)
	}
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}

	created, err := accounts.Save(ctx, l.accountFromAssertion(a, now))
	if err != nil {
		if federation.IsUniqueViolation(err) {
			// lost a race on the email; pick up the winner's account
			l.logger.Info("account create raced on email %s, reusing existing account", a.Email)
			existing, ferr := accounts.FindByEmail(ctx, a.Email)
			if ferr != nil {
				return nil, fmt.Errorf("failed to reload account after unique violation: %w", ferr)
			}
			return l.attachLink(ctx, accounts, links, existing, a, now, false)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return l.attachLink(ctx, accounts, links, created, a, now, true)
}

func (l *Linker) refreshExisting(ctx context.Context, accounts federation.Accounts, links federation.IdentityLinks, link *federation.IdentityLink, a *Assertion, now time.Time) (*LinkResult, error) {
	account, err := accounts.FindByID(ctx, link.AccountID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDanglingLink
		}
		return nil, fmt.Errorf("failed to load linked account: %w", err)
	}

	refreshProfile(account, a)
	account.LastLoginAt = &now

	if _, err := accounts.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if err := links.TouchLastUsed(ctx, link.ID, now); err != nil {
		return nil, fmt.Errorf("failed to touch identity link: %w", err)
	}
	link.LastUsedAt = &now

	return &LinkResult{Account: account, Link: link}, nil
}

func (l *Linker) attachLink(ctx context.Context, accounts federation.Accounts, links federation.IdentityLinks, account *federation.Account, a *Assertion, now time.Time, isNewAccount bool) (*LinkResult, error) {
	if !isNewAccount {
		refreshProfile(account, a)
		account.LastLoginAt = &now
		if _, err := accounts.Save(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
	}

	count, err := links.CountByAccountID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count identity links: %w", err)
	}

	link := &federation.IdentityLink{
		AccountID:         account.ID,
		ProviderName:      a.Provider,
		ProviderSubjectID: a.SubjectID,
		ProviderEmail:     a.Email,
		ProviderUsername:  a.Username,
		IsPrimary:         count == 0,
		LinkedAt:          now,
		LastUsedAt:        &now,
	}

	saved, err := links.Save(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity link: %w", err)
	}

	return &LinkResult{
		Account:      account,
		Link:         saved,
		IsNewAccount: isNewAccount,
		IsNewLink:    true,
	}, nil
}

func (l *Linker) accountFromAssertion(a *Assertion, now time.Time) *federation.Account {
	first, last := SplitName(a.Name)
	return &federation.Account{
		Email:          a.Email,
		FirstName:      first,
		LastName:       last,
		ProfilePicture: a.AvatarURL,
		LastLoginAt:    &now,
	}
}

func refreshProfile(account *federation.Account, a *Assertion) {
	if a.Name != "" {
		account.FirstName, account.LastName = SplitName(a.Name)
	}
	if a.AvatarURL != "" {
		account.ProfilePicture = a.AvatarURL
	}
}

// SplitName splits a display name on its first run of whitespace into at
// most two parts. Blank names map to ("Unknown", "").
func SplitName(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "Unknown", ""
	}

	idx := strings.IndexFunc(trimmed, unicode.IsSpace)
	if idx < 0 {
		return trimmed, ""
	}

	first := trimmed[:idx]
	rest := strings.TrimLeftFunc(trimmed[idx:], unicode.IsSpace)
	return first, rest
}

func isNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows)
}
