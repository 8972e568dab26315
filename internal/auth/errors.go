package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes attached to structured errors. They exist for internal
// diagnostics; clients only ever see the uniform unauthenticated outcome.
const (
	TextCodeInvalidCreds    = "INVALID_CREDENTIALS"
	TextCodeTokenExpired    = "TOKEN_EXPIRED"
	TextCodeTokenMalformed  = "TOKEN_MALFORMED"
	TextCodeClaimsMalformed = "CLAIMS_MALFORMED"
	TextCodeSessionNotFound = "SESSION_NOT_FOUND"
	TextCodeTooManyAttempts = "TOO_MANY_ATTEMPTS"
)

// ErrIdentityNotFound is returned when a user lookup comes back empty.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound)

// ErrMismatchedHashAndPassword is the single credential failure returned for
// both an unknown email and a wrong password, so responses never reveal
// which check failed.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token's exp claim is in the past.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers undecodable, unsigned, and wrong-secret tokens.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrClaimsMalformed is returned when a token verifies but its subject claim
// is missing or not a valid user identifier.
var ErrClaimsMalformed = errors.New("token claims are malformed", errors.CategoryAuth).
	WithTextCode(TextCodeClaimsMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToFindSession is returned when a request carries no validated
// claims under the configured context key.
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrTooManyLoginAttempts throttles repeated credential failures.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrNoEmptyString rejects empty plaintext passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput)

// ErrSigningKeyMissing means the process was started without a usable signing
// secret. It is fatal at boot, never a per-request condition.
var ErrSigningKeyMissing = errors.New("signing key is not configured", errors.CategoryInternal)

// IsTokenExpiredError reports whether err represents token expiry.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError reports whether err represents an undecodable or
// badly-claimed token, including the missing-token case.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		switch richErr.TextCode {
		case TextCodeTokenMalformed, TextCodeClaimsMalformed:
			return true
		}
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsCredentialError reports whether err is the uniform bad-credentials result.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeInvalidCreds
	}

	return false
}
