package security

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := ComparePassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePassword("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ComparePassword("x", "not-a-hash")
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("alice", "user", "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "vocalgate", claims.Issuer)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken("alice", "user", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(token, "secret")
	assert.Error(t, err)
}

func TestAccessTokenRequiresSecret(t *testing.T) {
	_, err := GenerateAccessToken("alice", "user", "", time.Minute)
	assert.Error(t, err)
}

func TestMFA(t *testing.T) {
	secret, err := GenerateMFASecret()
	require.NoError(t, err)
	assert.Len(t, secret, 32)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	assert.True(t, VerifyMFACode(code, secret))
	assert.False(t, VerifyMFACode("12345", secret))

	uri := GetMFAQRCodeURI("operator", secret)
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/VocalGate:operator?secret="+secret))
}
