package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken("secret", "sess123", 42, "Customer", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseSessionToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "sess123", claims.SessionID)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "Customer", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseSessionTokenWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("secret", "sess123", 42, "Customer", time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseSessionTokenExpired(t *testing.T) {
	token, err := GenerateSessionToken("secret", "sess123", 42, "Customer", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, "secret")
	assert.Error(t, err)
}

func TestParseSessionTokenGarbage(t *testing.T) {
	_, err := ParseSessionToken("not.a.token", "secret")
	assert.Error(t, err)
}
