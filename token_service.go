package federation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	lifetime   time.Duration
	issuer     string
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, lifetime time.Duration, issuer string, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		lifetime:   lifetime,
		issuer:     issuer,
		logger:     logger,
	}
}

// Issue signs a session token for a persisted account. The subject is the
// decimal account id; profile fields ride along as custom claims.
func (ts *TokenServiceImpl) Issue(account *Account) (string, error) {
	if account == nil || account.ID == 0 {
		return "", errors.New("account has no identifier", ErrTokenIssuance.Category).
			WithTextCode(ErrTokenIssuance.TextCode)
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   strconv.FormatInt(account.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.lifetime)),
		},
		UserID:         account.ID,
		Email:          account.Email,
		FirstName:      account.FirstName,
		LastName:       account.LastName,
		ProfilePicture: account.ProfilePicture,
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, ErrTokenIssuance.Category, ErrTokenIssuance.Message).
			WithTextCode(ErrTokenIssuance.TextCode)
	}

	return signed, nil
}

// Validate reports whether the token parses, verifies, and has not expired.
// It is total: any input maps to true or false, never an error.
func (ts *TokenServiceImpl) Validate(token string) bool {
	if token == "" {
		return false
	}
	if _, err := ts.parse(token); err != nil {
		ts.logger.Debug("token validation failed: %v", err)
		return false
	}
	return true
}

// Claims parses and verifies the token and returns its claim set. Callers
// on the request path should gate on Validate first.
func (ts *TokenServiceImpl) Claims(token string) (*SessionClaims, error) {
	claims, err := ts.parse(token)
	if err != nil {
		return nil, errors.Wrap(err, ErrTokenParsing.Category, ErrTokenParsing.Message).
			WithTextCode(ErrTokenParsing.TextCode)
	}
	return claims, nil
}

// IsExpired reads the expiry without enforcing it, then compares against
// now with no leeway. Tokens that cannot be read count as expired.
func (ts *TokenServiceImpl) IsExpired(token string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := &SessionClaims{}
	if _, err := parser.ParseWithClaims(token, claims, ts.keyFunc); err != nil {
		return true
	}

	if claims.ExpiresAt == nil {
		return true
	}

	return claims.ExpiresAt.Time.Before(time.Now())
}

func (ts *TokenServiceImpl) parse(token string) (*SessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, ts.keyFunc, parserOptions...)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("unable to decode session claims", errors.CategoryAuth)
	}

	return claims, nil
}

func (ts *TokenServiceImpl) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return ts.signingKey, nil
}

func newTokenID() string {
	return uuid.NewString()
}
