package auth

import (
	"time"

	"github.com/google/uuid"
)

var _ Session = (*SessionObject)(nil)

// SessionObject is the request-scoped binding of a validated token's claims.
// It is created by the guard at request entry and discarded with the
// request; nothing about it is ever persisted.
type SessionObject struct {
	UserID         string     `json:"user_id,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

// sessionFromAuthClaims maps validated claims into a SessionObject.
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrClaimsMalformed
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	return &SessionObject{
		UserID:         claims.UserID(),
		Issuer:         claims.Issuer(),
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}
