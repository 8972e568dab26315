package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger is the minimal logging surface the auth package needs. The process
// edge adapts log/slog into it; a default stdout logger is used otherwise.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an authenticated identity.
type Identity interface {
	ID() string
	Email() string
}

// Session holds the request-scoped view of a validated token.
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

// Authenticator holds methods to deal with authentication.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	SessionFromToken(token string) (Session, error)
	IdentityFromSession(ctx context.Context, session Session) (Identity, error)
}

// LoginPayload is the shape of a sign-in request, page or API.
type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
}

// Config holds auth options.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetRejectedRouteKey() string
	GetRejectedRouteDefault() string
}

// IdentityProvider ensures we have a store to retrieve auth identities.
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords.
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Surface identifies the channel a route serves: browser page navigation or
// programmatic API calls. It is decided once at route registration time and
// drives both credential delivery and guard rejection behavior.
type Surface int

const (
	// SurfacePage routes render HTML and receive tokens via cookie.
	SurfacePage Surface = iota
	// SurfaceAPI routes speak JSON and receive tokens via bearer header.
	SurfaceAPI
)

func (s Surface) String() string {
	if s == SurfaceAPI {
		return "api"
	}
	return "page"
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println(append([]any{"[ERR] AUTH", msg}, args...)...)
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println(append([]any{"[WRN] AUTH", msg}, args...)...)
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println(append([]any{"[INF] AUTH", msg}, args...)...)
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println(append([]any{"[DBG] AUTH", msg}, args...)...)
}
