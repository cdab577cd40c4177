// Package authware resolves the session cookie on every request into an
// explicit outcome. It never rejects: requests that cannot be tied to an
// account continue as anonymous.
package authware

import (
	"strings"

	"github.com/goliatone/go-federation"
	"github.com/goliatone/go-router"
)

// DefaultContextKey is the router locals key holding the Outcome.
const DefaultContextKey = "auth"

// UserRole is the single role every authenticated principal carries.
const UserRole = "user"

// PathRule matches a request path, either exactly or by prefix. Rules are
// evaluated in order.
type PathRule struct {
	Pattern string
	Prefix  bool
}

// Matches reports whether the rule covers path.
func (r PathRule) Matches(path string) bool {
	if r.Prefix {
		return strings.HasPrefix(path, r.Pattern)
	}
	return path == r.Pattern
}

// Exact builds a rule matching path exactly.
func Exact(path string) PathRule {
	return PathRule{Pattern: path}
}

// Prefix builds a rule matching every path under prefix.
func Prefix(prefix string) PathRule {
	return PathRule{Pattern: prefix, Prefix: true}
}

// Principal describes who an authenticated request acts as.
type Principal struct {
	// Identity is the account email.
	Identity string
	Roles    []string
	Account  *federation.Account
}

// Outcome is the result of resolving a request's credentials.
type Outcome struct {
	Authenticated bool
	// Skipped is true when the path matched the public allow-list and no
	// credential work was done.
	Skipped   bool
	Account   *federation.Account
	Principal *Principal
}

// Config configures the middleware.
type Config struct {
	// Tokens validates and decodes the session cookie. Required.
	Tokens federation.TokenService

	// Accounts loads the subject account. Required.
	Accounts federation.Accounts

	// CookieName holding the session JWT (default: "jwt")
	CookieName string

	// PublicPaths skip credential resolution entirely, in order.
	PublicPaths []PathRule

	// ContextKey is the router locals key for the Outcome (default: "auth")
	ContextKey string

	// OnOutcome observes every resolved outcome, e.g. for metrics.
	OnOutcome func(Outcome)

	Logger federation.Logger
}

func (cfg Config) cookieName() string {
	if cfg.CookieName == "" {
		return "jwt"
	}
	return cfg.CookieName
}

func (cfg Config) contextKey() string {
	if cfg.ContextKey == "" {
		return DefaultContextKey
	}
	return cfg.ContextKey
}

func (cfg Config) isPublic(path string) bool {
	for _, rule := range cfg.PublicPaths {
		if rule.Matches(path) {
			return true
		}
	}
	return false
}

// New builds the middleware. It panics when required collaborators are
// missing, matching how misconfiguration surfaces at startup elsewhere.
func New(cfg Config) router.MiddlewareFunc {
	if cfg.Tokens == nil {
		panic("FEDERATION: authware configuration: Tokens is required.")
	}
	if cfg.Accounts == nil {
		panic("FEDERATION: authware configuration: Accounts is required.")
	}
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			outcome := Resolve(cfg, ctx)

			ctx.Locals(cfg.contextKey(), outcome)

			if outcome.Authenticated {
				stdCtx := federation.WithAccountContext(ctx.Context(), outcome.Account)
				ctx.SetContext(stdCtx)
			}

			if cfg.OnOutcome != nil {
				cfg.OnOutcome(outcome)
			}

			return next(ctx)
		}
	}
}

// Resolve turns the request's cookie into an Outcome. Every failure mode
// downgrades to anonymous.
func Resolve(cfg Config, ctx router.Context) Outcome {
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	if cfg.isPublic(ctx.Path()) {
		return Outcome{Skipped: true}
	}

	raw := ctx.Cookies(cfg.cookieName())
	if raw == "" {
		return Outcome{}
	}

	if !cfg.Tokens.Validate(raw) {
		cfg.Logger.Debug("session cookie failed validation")
		return Outcome{}
	}

	claims, err := cfg.Tokens.Claims(raw)
	if err != nil {
		cfg.Logger.Debug("session cookie failed claim extraction: %v", err)
		return Outcome{}
	}

	id, err := claims.AccountID()
	if err != nil {
		cfg.Logger.Debug("session cookie has unusable subject: %v", err)
		return Outcome{}
	}

	account, err := cfg.Accounts.FindByID(ctx.Context(), id)
	if err != nil || account == nil {
		cfg.Logger.Debug("session subject %d has no account", id)
		return Outcome{}
	}

	return Outcome{
		Authenticated: true,
		Account:       account,
		Principal: &Principal{
			Identity: account.Email,
			Roles:    []string{UserRole},
			Account:  account,
		},
	}
}

// FromRouter extracts the Outcome installed by the middleware.
func FromRouter(ctx router.Context, key string) (Outcome, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return Outcome{}, false
	}
	outcome, ok := raw.(Outcome)
	return outcome, ok
}

type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}
