package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager("test-secret", ttl)
	require.NoError(t, err)
	return m
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, err := m.GenerateToken("alice123", LoginGeneral, LevelEditor, "device-1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice123", claims.Username)
	assert.Equal(t, LoginGeneral, claims.LoginType)
	assert.Equal(t, LevelEditor, claims.PermissionLevel)
	require.NotNil(t, claims.FCM)
	assert.Equal(t, "device-1", *claims.FCM)
}

func TestJWTManager_EmptyFCMOmitted(t *testing.T) {
	m := newTestManager(t, time.Hour)
	token, err := m.GenerateToken("bob@example.com", LoginOAuth2, LevelUser, "")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.FCM)
}

func TestJWTManager_Expiry(t *testing.T) {
	m := newTestManager(t, time.Hour)
	issued := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateToken("alice123", LoginGeneral, LevelUser, "")
	require.NoError(t, err)

	// 过期30秒仍在允许的偏差内
	m.now = func() time.Time { return issued.Add(time.Hour + 30*time.Second) }
	_, err = m.ValidateToken(token)
	assert.NoError(t, err)

	m.now = func() time.Time { return issued.Add(time.Hour + 2*time.Minute) }
	_, err = m.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	m := newTestManager(t, time.Hour)
	other, err := NewJWTManager("other-secret", time.Hour)
	require.NoError(t, err)

	token, err := other.GenerateToken("alice123", LoginGeneral, LevelAdmin, "")
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "alice123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ValidateToken(unsigned)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = m.ValidateToken("not-a-token")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager("", time.Hour)
	assert.Error(t, err)
}
