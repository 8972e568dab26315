package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"

	"github.com/eventboard/eventboard/internal/store"
)

// UserTracker is the slice of the credential store the provider needs.
type UserTracker interface {
	GetByIdentifier(ctx context.Context, identifier string) (*store.User, error)
	Create(ctx context.Context, record *store.User) (*store.User, error)
	TrackAttemptedLogin(ctx context.Context, user *store.User) error
	TrackSuccessfulLogin(ctx context.Context, user *store.User) error
}

// MaxLoginAttempts is the number of failed attempts a user gets before the
// cooldown window applies.
var MaxLoginAttempts = 5

// CoolDownPeriod is how long a throttled account stays throttled.
var CoolDownPeriod = 24 * time.Hour

// UserProvider adapts the credential store into an IdentityProvider and owns
// password verification and registration.
type UserProvider struct {
	store  UserTracker
	logger Logger
}

// NewUserProvider will create a new UserProvider.
func NewUserProvider(store UserTracker) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity finds the user and compares the password against the stored
// hash. An unknown email and a wrong password produce the identical error so
// responses cannot be used to enumerate accounts.
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.LoginAttemptAt != nil && time.Since(*user.LoginAttemptAt) > CoolDownPeriod {
		user.LoginAttempts = 0
	}

	if user.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if err2 := u.store.TrackAttemptedLogin(ctx, user); err2 != nil {
			u.logger.Error("failed to track login attempt", "user_id", user.ID.String(), "error", err2)
		}
		return nil, ErrMismatchedHashAndPassword
	}

	if err := u.store.TrackSuccessfulLogin(ctx, user); err != nil {
		u.logger.Error("failed to track successful login", "user_id", user.ID.String(), "error", err)
	}

	return userIdentity(user), nil
}

// FindIdentityByIdentifier resolves an identifier (id or email) to an identity.
func (u *UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return userIdentity(user), nil
}

// Register hashes the password and creates the user. Duplicate emails
// surface the store's conflict error unchanged; the password itself is never
// logged or stored.
func (u *UserProvider) Register(ctx context.Context, email, password string) (Identity, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := u.store.Create(ctx, &store.User{
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("registered user", "user_id", user.ID.String())

	return userIdentity(user), nil
}

type authIdentity struct {
	id    string
	email string
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Email() string {
	return a.email
}

var _ Identity = authIdentity{}

func userIdentity(user *store.User) authIdentity {
	return authIdentity{
		id:    user.ID.String(),
		email: user.Email,
	}
}
