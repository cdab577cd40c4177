package linking

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-router"
)

// Assertion is a verified statement of identity from an upstream provider.
// Protocol-level verification happens before an Assertion is built; its
// values are trusted here.
type Assertion struct {
	Provider      string
	SubjectID     string
	Email         string
	Name          string
	AvatarURL     string
	Username      string
	EmailVerified bool
}

// Validate checks the fields resolution cannot work without.
func (a Assertion) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Provider, validation.Required),
		validation.Field(&a.SubjectID, validation.Required),
		validation.Field(&a.Email, validation.Required),
	)
}

// AssertionVerifier produces a verified assertion for a callback request.
type AssertionVerifier interface {
	Verify(ctx context.Context, c router.Context) (*Assertion, error)
}

// AssertionVerifierFunc adapts a function to the AssertionVerifier interface.
type AssertionVerifierFunc func(ctx context.Context, c router.Context) (*Assertion, error)

// Verify implements AssertionVerifier.
func (f AssertionVerifierFunc) Verify(ctx context.Context, c router.Context) (*Assertion, error) {
	return f(ctx, c)
}

// HeaderAssertionVerifier reads an assertion from trusted gateway headers.
// It is meant for deployments where an auth proxy terminates the provider
// handshake and forwards the verified profile downstream.
type HeaderAssertionVerifier struct{}

// Verify implements AssertionVerifier.
func (HeaderAssertionVerifier) Verify(_ context.Context, c router.Context) (*Assertion, error) {
	assertion := &Assertion{
		Provider:      c.Header("X-Auth-Provider"),
		SubjectID:     c.Header("X-Auth-Subject"),
		Email:         c.Header("X-Auth-Email"),
		Name:          c.Header("X-Auth-Name"),
		AvatarURL:     c.Header("X-Auth-Picture"),
		Username:      c.Header("X-Auth-Username"),
		EmailVerified: c.Header("X-Auth-Email-Verified") == "true",
	}

	if err := assertion.Validate(); err != nil {
		return nil, err
	}

	return assertion, nil
}
