package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSessionTokenRoundTrip(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second).UTC()
	token, err := GenerateSessionToken(SessionClaims{Subject: "u1", SessionID: "s1", ExpiresAt: exp}, testSecret)
	require.NoError(t, err)

	claims, err := ValidateSessionToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "s1", claims.SessionID)
	assert.True(t, exp.Equal(claims.ExpiresAt))
}

func TestSessionTokenRejects(t *testing.T) {
	valid, err := GenerateSessionToken(SessionClaims{
		Subject: "u1", SessionID: "s1", ExpiresAt: time.Now().Add(time.Hour),
	}, testSecret)
	require.NoError(t, err)

	_, err = ValidateSessionToken(valid, "another-secret-another-secret-xx")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateSessionToken(SessionClaims{
		Subject: "u1", SessionID: "s1", ExpiresAt: time.Now().Add(-time.Minute),
	}, testSecret)
	require.NoError(t, err)
	_, err = ValidateSessionToken(expired, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "sid": "s1", "type": "profile", "exp": time.Now().Add(time.Hour).Unix(),
	})
	otherToken, err := other.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ValidateSessionToken(otherToken, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateSessionToken("garbage", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestGenerators(t *testing.T) {
	assert.Len(t, GenerateULID(), 26)
	key, err := GenerateSecureKey(15)
	require.NoError(t, err)
	assert.Len(t, key, 15)
}
