package main

import (
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
)

// Config is the environment-driven server configuration. It satisfies
// federation.Config.
type Config struct {
	Addr        string `env:"SERVER_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9100"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:federation.db?cache=shared&_fk=1"`

	SigningKey    string        `env:"JWT_SIGNING_KEY"`
	TokenLifetime time.Duration `env:"JWT_TOKEN_LIFETIME" envDefault:"24h"`
	Issuer        string        `env:"JWT_ISSUER" envDefault:"go-federation"`

	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`
	FrontendURL  string `env:"FRONTEND_URL"`

	// PublicPaths skip credential resolution. A trailing "*" makes the
	// entry a prefix match.
	PublicPaths []string `env:"PUBLIC_PATHS" envSeparator:"," envDefault:"/auth/callback,/api/logout,/api/save-metric,/healthz"`

	FixturesBaseURL string `env:"FIXTURES_BASE_URL" envDefault:"https://v3.football.api-sports.io"`
	FixturesAPIKey  string `env:"FIXTURES_API_KEY"`
	FixturesLeagues []int  `env:"FIXTURES_LEAGUES" envSeparator:"," envDefault:"39,140,135"`
	FixturesSeason  int    `env:"FIXTURES_SEASON" envDefault:"2025"`
}

// LoadConfig reads and validates configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Redacted returns a copy of the configuration safe for startup logging.
func (c Config) Redacted() Config {
	if c.SigningKey != "" {
		c.SigningKey = "[redacted]"
	}
	if c.FixturesAPIKey != "" {
		c.FixturesAPIKey = "[redacted]"
	}
	return c
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.SigningKey, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.Issuer, validation.Required),
	)
}

func (c Config) GetSigningKey() string {
	return c.SigningKey
}

func (c Config) GetTokenLifetime() time.Duration {
	return c.TokenLifetime
}

func (c Config) GetIssuer() string {
	return c.Issuer
}

func (c Config) GetCookieSecure() bool {
	return c.CookieSecure
}

func (c Config) GetFrontendURL() string {
	return c.FrontendURL
}

func (c Config) GetPublicPaths() []string {
	return c.PublicPaths
}
