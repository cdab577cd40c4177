package linking

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-federation"
	"github.com/goliatone/go-router"
)

const (
	// DefaultSessionCookie carries the session JWT.
	DefaultSessionCookie = "jwt"
	// DefaultProfileCookie carries a display-only profile snapshot.
	DefaultProfileCookie = "user_info"
	// DefaultRedirect is where logins land when nothing better is known.
	DefaultRedirect = "http://localhost:3000/"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController handles the login callback and logout routes.
type HTTPController struct {
	verifier AssertionVerifier
	linker   *Linker
	tokens   federation.TokenService
	activity federation.ActivitySink
	config   HTTPConfig
	logger   federation.Logger
	observer func(success bool)
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// FrontendURL is where successful logins redirect. When empty the
	// redirect falls back to the request referer, then DefaultRedirect.
	FrontendURL string

	// SessionCookieName for storing the JWT (default: "jwt")
	SessionCookieName string

	// ProfileCookieName for the display-only profile cookie (default: "user_info")
	ProfileCookieName string

	// CookieSecure sets the Secure flag on both cookies
	CookieSecure bool

	// TokenLifetime bounds the session cookie max-age
	TokenLifetime time.Duration
}

// NewHTTPController creates a new login/logout HTTP controller.
func NewHTTPController(verifier AssertionVerifier, linker *Linker, tokens federation.TokenService, cfg HTTPConfig, opts ...ControllerOption) *HTTPController {
	if cfg.SessionCookieName == "" {
		cfg.SessionCookieName = DefaultSessionCookie
	}
	if cfg.ProfileCookieName == "" {
		cfg.ProfileCookieName = DefaultProfileCookie
	}

	c := &HTTPController{
		verifier: verifier,
		linker:   linker,
		tokens:   tokens,
		activity: federation.NormalizeActivitySink(nil),
		config:   cfg,
		logger:   defaultLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ControllerOption configures the HTTP controller.
type ControllerOption func(*HTTPController)

// WithActivitySink wires an audit sink for login/logout events.
func WithActivitySink(sink federation.ActivitySink) ControllerOption {
	return func(c *HTTPController) {
		c.activity = federation.NormalizeActivitySink(sink)
	}
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger federation.Logger) ControllerOption {
	return func(c *HTTPController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLoginObserver reports each callback outcome, e.g. to a metrics
// collector.
func WithLoginObserver(fn func(success bool)) ControllerOption {
	return func(c *HTTPController) {
		c.observer = fn
	}
}

// RegisterRoutes registers the login callback and logout routes.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/auth/callback", c.Callback)
	group.Post("/api/logout", c.Logout)
}

// Callback completes a federated login: resolve the assertion to an
// account, mint a session token, set cookies, redirect. Resolution or
// signing failures abort before any cookie is written.
func (c *HTTPController) Callback(ctx router.Context) error {
	assertion, err := c.verifier.Verify(ctx.Context(), ctx)
	if err != nil {
		c.logger.Error("login callback rejected assertion: %v", err)
		c.observeLogin(false)
		return err
	}

	result, err := c.linker.Resolve(ctx.Context(), assertion)
	if err != nil {
		c.logger.Error("login callback failed to resolve identity: %v", err)
		c.observeLogin(false)
		return err
	}

	token, err := c.tokens.Issue(result.Account)
	if err != nil {
		c.logger.Error("login callback failed to issue token: %v", err)
		c.observeLogin(false)
		return err
	}

	c.observeLogin(true)
	c.setSessionCookie(ctx, token)
	c.setProfileCookie(ctx, result.Account)

	c.recordActivity(ctx, federation.ActivityEvent{
		EventType: federation.ActivityEventLoginSuccess,
		AccountID: result.Account.ID,
		Metadata: map[string]any{
			"provider":    assertion.Provider,
			"new_account": result.IsNewAccount,
		},
		OccurredAt: time.Now(),
	})

	redirect := DetermineRedirectURL(c.config.FrontendURL, ctx.Referer())
	return ctx.Redirect(redirect, http.StatusFound)
}

// Logout expires the session cookie and reports success regardless of the
// session state. The audit event is best effort.
func (c *HTTPController) Logout(ctx router.Context) error {
	if raw := ctx.Cookies(c.config.SessionCookieName); raw != "" {
		if claims, err := c.tokens.Claims(raw); err == nil {
			if id, err := claims.AccountID(); err == nil {
				c.recordActivity(ctx, federation.ActivityEvent{
					EventType:  federation.ActivityEventLogout,
					AccountID:  id,
					OccurredAt: time.Now(),
				})
			}
		}
	}

	ctx.Cookie(&router.Cookie{
		Name:     c.config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   c.config.CookieSecure,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "logged out",
	})
}

func (c *HTTPController) setSessionCookie(ctx router.Context, token string) {
	ctx.Cookie(&router.Cookie{
		Name:     c.config.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.config.TokenLifetime.Seconds()),
		Secure:   c.config.CookieSecure,
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// setProfileCookie writes a non-HttpOnly, URL-encoded JSON snapshot of the
// profile for front-end display. Failures never affect the login.
func (c *HTTPController) setProfileCookie(ctx router.Context, account *federation.Account) {
	payload, err := json.Marshal(map[string]string{
		"firstName":      account.FirstName,
		"lastName":       account.LastName,
		"email":          account.Email,
		"profilePicture": account.ProfilePicture,
	})
	if err != nil {
		c.logger.Error("failed to encode profile cookie: %v", err)
		return
	}

	ctx.Cookie(&router.Cookie{
		Name:     c.config.ProfileCookieName,
		Value:    url.QueryEscape(string(payload)),
		Path:     "/",
		MaxAge:   int(c.config.TokenLifetime.Seconds()),
		Secure:   c.config.CookieSecure,
		HTTPOnly: false,
		SameSite: "Lax",
	})
}

func (c *HTTPController) observeLogin(success bool) {
	if c.observer != nil {
		c.observer(success)
	}
}

func (c *HTTPController) recordActivity(ctx router.Context, event federation.ActivityEvent) {
	if err := c.activity.Record(ctx.Context(), event); err != nil {
		c.logger.Error("failed to record activity event: %v", err)
	}
}

// DetermineRedirectURL resolves the post-login destination: the configured
// front-end URL normalized to a trailing slash, then the referer when it
// points at a known dev origin, then DefaultRedirect.
func DetermineRedirectURL(frontendURL, referer string) string {
	if frontendURL != "" {
		if !strings.HasSuffix(frontendURL, "/") {
			frontendURL += "/"
		}
		return frontendURL
	}

	if strings.Contains(referer, ":3000") {
		return "http://localhost:3000/"
	}
	if strings.Contains(referer, ":8080") {
		return "http://localhost:8080/"
	}

	return DefaultRedirect
}

type defaultLogger struct{}

func (defaultLogger) Debug(format string, args ...any) {}
func (defaultLogger) Info(format string, args ...any)  {}
func (defaultLogger) Error(format string, args ...any) {}
