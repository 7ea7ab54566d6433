package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 10*time.Minute)

	token, expiresAt, err := tm.GenerateToken("dispatch-service", ScopeDriversRead)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dispatch-service", claims.Subject)
	assert.Equal(t, ScopeDriversRead, claims.Scope)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Minute)

	other, _, err := NewTokenManager("other-secret", time.Minute).GenerateToken("svc", ScopeDriversRead)
	require.NoError(t, err)

	expiredManager := NewTokenManager("test-secret", time.Minute)
	expiredManager.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, err := expiredManager.GenerateToken("svc", ScopeDriversRead)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Scope: ScopeDriversRead}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret": other,
		"expired":      expired,
		"none alg":     none,
		"garbage":      "not-a-token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tm.ParseToken(token)
			assert.Error(t, err)
		})
	}
}
