package auth

import (
	"context"
)

// Auther is the concrete Authenticator: it verifies credentials through an
// IdentityProvider and mints tokens through a TokenService.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator.
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService sets a custom token service, used by tests to control the clock.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator.
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the identifier/password pair and mints a token for the
// resolved identity. Credential failures are logged without the password and
// surface as the uniform ErrMismatchedHashAndPassword.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Info("login rejected", "identifier", identifier)
		return "", err
	}

	if identity == nil || identity.ID() == "" {
		s.logger.Error("login resolved an empty identity", "identifier", identifier)
		return "", ErrIdentityNotFound
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("login failed to mint token", "user_id", identity.ID(), "error", err)
		return "", err
	}

	s.logger.Debug("login succeeded", "user_id", identity.ID())

	return token, nil
}

// SessionFromToken validates a raw token string and maps it to a session.
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		return nil, err
	}

	return sessionFromAuthClaims(claims)
}

// IdentityFromSession resolves the session subject back to a stored identity.
func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, session.GetUserID())
	if err != nil {
		s.logger.Error("identity from session lookup failed", "user_id", session.GetUserID(), "error", err)
		return nil, err
	}

	return identity, nil
}

var _ Authenticator = (*Auther)(nil)
