package federation

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// TokenService issues and inspects session tokens.
type TokenService interface {
	// Issue signs a session token for a persisted account.
	Issue(account *Account) (string, error)
	// Validate reports whether the token is well formed, signed by us,
	// and not expired. It never returns an error.
	Validate(token string) bool
	// Claims parses and verifies the token, returning its claim set.
	Claims(token string) (*SessionClaims, error)
	// IsExpired reports whether the token is past its expiry. Unreadable
	// tokens count as expired.
	IsExpired(token string) bool
}

// Accounts is the persistence boundary for local accounts.
type Accounts interface {
	FindByID(ctx context.Context, id int64) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Save(ctx context.Context, account *Account) (*Account, error)
}

// IdentityLinks is the persistence boundary for provider links.
type IdentityLinks interface {
	FindByProviderAndSubject(ctx context.Context, provider, subjectID string) (*IdentityLink, error)
	FindByAccountID(ctx context.Context, accountID int64) ([]*IdentityLink, error)
	CountByAccountID(ctx context.Context, accountID int64) (int, error)
	Save(ctx context.Context, link *IdentityLink) (*IdentityLink, error)
	TouchLastUsed(ctx context.Context, id int64, at time.Time) error
}

// Config holds federation options
type Config interface {
	GetSigningKey() string
	GetTokenLifetime() time.Duration
	GetIssuer() string
	GetCookieSecure() bool
	GetFrontendURL() string
	GetPublicPaths() []string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] FEDERATION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] FEDERATION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] FEDERATION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
