package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService mints and validates the application's identity tokens.
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenServiceImpl implements the TokenService interface. Validation is a
// pure function of (token, clock, secret): no store access, no shared
// mutable state, safe for concurrent use.
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	logger          Logger
	now             func() time.Time
}

// NewTokenService creates a new TokenService instance. tokenExpiration is
// the token TTL in hours.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		logger:          logger,
		now:             time.Now,
	}
}

// WithClock overrides the time source, used by tests to reach expiry
// boundaries without sleeping.
func (ts *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	if now != nil {
		ts.now = now
	}
	return ts
}

// Generate creates a signed token for the given identity with claims
// {iss, sub, iat, exp, jti, uid}.
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
		UID: identity.ID(),
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	if len(ts.signingKey) == 0 {
		return "", ErrSigningKeyMissing
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Failures are distinguishable (expired vs malformed vs bad subject) for
// logging, but every one of them maps to the same unauthenticated outcome at
// the guard boundary.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	if _, err := uuid.Parse(claims.UserID()); err != nil {
		ts.logger.Error("token validate rejected non-identifier subject")
		return nil, ErrClaimsMalformed
	}

	return claims, nil
}

// SelfCheck signs and validates a probe token. It runs once at process start
// so a missing or unusable signing secret is fatal at boot instead of
// surfacing on the first request.
func (ts *TokenServiceImpl) SelfCheck() error {
	if len(ts.signingKey) == 0 {
		return ErrSigningKeyMissing
	}

	probe := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(ts.now()),
			ExpiresAt: jwt.NewNumericDate(ts.now().Add(time.Minute)),
		},
	}
	probe.UID = probe.RegisteredClaims.Subject
	ensureTokenID(&probe.RegisteredClaims)

	signed, err := ts.SignClaims(probe)
	if err != nil {
		return err
	}

	if _, err := ts.Validate(signed); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "token service self check failed")
	}

	return nil
}

var _ TokenService = (*TokenServiceImpl)(nil)
var _ TokenValidator = (*TokenServiceImpl)(nil)
