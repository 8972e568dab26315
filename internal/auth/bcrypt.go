package auth

import (
	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// hashGate bounds the number of bcrypt computations running at once so a
// burst of sign-ins cannot starve unrelated requests. Its capacity is fixed
// and independent of the server's request concurrency.
var hashGate = make(chan struct{}, 8)

// HashPassword will generate a salted password hash. bcrypt salts
// internally, so hashing the same password twice yields different outputs.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	hashGate <- struct{}{}
	defer func() { <-hashGate }()

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext password against
// the stored hash. The comparison is constant time with respect to where a
// mismatch occurs; a mismatch is reported as an error value, never a panic.
func ComparePasswordAndHash(password, hash string) error {
	hashGate <- struct{}{}
	defer func() { <-hashGate }()

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		// A corrupt stored hash is reported the same as a wrong password so
		// callers cannot distinguish the two.
		return ErrMismatchedHashAndPassword
	}
	return nil
}
