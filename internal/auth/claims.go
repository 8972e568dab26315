package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims is the validated view of a token's payload.
type AuthClaims interface {
	Subject() string
	UserID() string
	Issuer() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete claim set carried by issued tokens: the
// registered claims (iss, sub, iat, exp, jti) plus the user id mirror.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim.
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user identifier, falling back to the subject claim.
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Issuer returns the issuer claim.
func (c *JWTClaims) Issuer() string {
	return c.RegisteredClaims.Issuer
}

// Expires returns the expiration time.
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time.
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ensureTokenID assigns a unique jti so two tokens minted for the same user
// in the same instant are still distinct credentials.
func ensureTokenID(rc *jwt.RegisteredClaims) {
	if rc.ID == "" {
		rc.ID = uuid.NewString()
	}
}
