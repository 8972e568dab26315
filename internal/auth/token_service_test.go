package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key-0123456789")

func newTestIdentity() authIdentity {
	return authIdentity{id: uuid.NewString(), email: "tester@example.com"}
}

func TestTokenServiceRoundTrip(t *testing.T) {
	identity := newTestIdentity()
	ts := NewTokenService(testSigningKey, 1, "eventboard-test", nil)

	token, err := ts.Generate(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, identity.ID(), claims.UserID())
	assert.Equal(t, identity.ID(), claims.Subject())
	assert.Equal(t, "eventboard-test", claims.Issuer())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires(), time.Minute)
}

func TestTokenServiceUniqueTokens(t *testing.T) {
	identity := newTestIdentity()
	base := time.Now()

	ts := NewTokenService(testSigningKey, 1, "", nil).
		WithClock(func() time.Time { return base })

	// Two tokens minted in the same instant still differ through jti.
	first, err := ts.Generate(identity)
	require.NoError(t, err)
	second, err := ts.Generate(identity)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenServiceExpired(t *testing.T) {
	identity := newTestIdentity()
	base := time.Now()

	minting := NewTokenService(testSigningKey, 1, "", nil).
		WithClock(func() time.Time { return base })

	token, err := minting.Generate(identity)
	require.NoError(t, err)

	checking := NewTokenService(testSigningKey, 1, "", nil).
		WithClock(func() time.Time { return base.Add(2 * time.Hour) })

	_, err = checking.Validate(token)
	require.Error(t, err)
	assert.True(t, IsTokenExpiredError(err))
	assert.False(t, IsMalformedError(err))
}

func TestTokenServiceTampered(t *testing.T) {
	ts := NewTokenService(testSigningKey, 1, "", nil)

	token, err := ts.Generate(newTestIdentity())
	require.NoError(t, err)

	// Flip one character inside the payload segment.
	tampered := []byte(token)
	i := strings.Index(token, ".") + 1
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}

	_, err = ts.Validate(string(tampered))
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))
}

func TestTokenServiceWrongKey(t *testing.T) {
	minting := NewTokenService([]byte("an-entirely-different-key"), 1, "", nil)

	token, err := minting.Generate(newTestIdentity())
	require.NoError(t, err)

	checking := NewTokenService(testSigningKey, 1, "", nil)

	_, err = checking.Validate(token)
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))
}

func TestTokenServiceWrongIssuer(t *testing.T) {
	minting := NewTokenService(testSigningKey, 1, "somebody-else", nil)

	token, err := minting.Generate(newTestIdentity())
	require.NoError(t, err)

	checking := NewTokenService(testSigningKey, 1, "eventboard-test", nil)

	_, err = checking.Validate(token)
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))
}

func TestTokenServiceRejectsUnsignedToken(t *testing.T) {
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	ts := NewTokenService(testSigningKey, 1, "", nil)

	_, err = ts.Validate(unsigned)
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))
}

func TestTokenServiceRejectsBadSubject(t *testing.T) {
	ts := NewTokenService(testSigningKey, 1, "", nil)

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-an-identifier",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	token, err := ts.SignClaims(claims)
	require.NoError(t, err)

	_, err = ts.Validate(token)
	require.Error(t, err)
	assert.True(t, IsMalformedError(err))
}

func TestTokenServiceMissingKey(t *testing.T) {
	ts := NewTokenService(nil, 1, "", nil)

	_, err := ts.Generate(newTestIdentity())
	assert.ErrorIs(t, err, ErrSigningKeyMissing)

	assert.Error(t, ts.SelfCheck())
}

func TestTokenServiceSelfCheck(t *testing.T) {
	ts := NewTokenService(testSigningKey, 1, "eventboard-test", nil)
	assert.NoError(t, ts.SelfCheck())
}
