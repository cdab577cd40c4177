package federation

import (
	stderrors "errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// ErrTokenIssuance wraps signing failures and attempts to issue tokens
// for unpersisted accounts.
var ErrTokenIssuance = errors.New("unable to issue session token", errors.CategoryInternal).
	WithTextCode("TOKEN_ISSUANCE_FAILED")

// ErrTokenParsing wraps any failure to parse or verify a session token.
var ErrTokenParsing = errors.New("unable to parse session token", errors.CategoryAuth).
	WithTextCode("TOKEN_PARSING_FAILED")

// ErrTokenSubject signals a token whose subject is not a numeric account id.
var ErrTokenSubject = errors.New("session token has no usable subject", errors.CategoryAuth).
	WithTextCode("TOKEN_SUBJECT_INVALID")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsUniqueViolation reports whether err is a unique constraint failure.
// Covers sqlite and postgres wording.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
