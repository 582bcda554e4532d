package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-key",
		Expiry:        60 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "skillforge-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := testManager()

	token, jti, err := m.GenerateAccessToken(42, "user@test.com", 3)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@test.com", claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "skillforge-test", claims.Issuer)
}

func TestRefreshAccessToken(t *testing.T) {
	m := testManager()

	refresh, _, err := m.GenerateRefreshToken(7, "user@test.com", 0)
	require.NoError(t, err)

	access, _, err := m.RefreshAccessToken(refresh, 0)
	require.NoError(t, err)

	claims, err := m.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, uint(7), claims.UserID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	m := testManager()

	access, _, err := m.GenerateAccessToken(7, "user@test.com", 0)
	require.NoError(t, err)

	_, _, err = m.RefreshAccessToken(access, 0)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	m := testManager()
	other := NewJWTManager(JWTConfig{Secret: "different-secret", Expiry: time.Minute, RefreshExpiry: time.Hour})

	token, _, err := m.GenerateAccessToken(1, "user@test.com", 0)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager(JWTConfig{
		Secret:        "test-secret-key",
		Expiry:        -time.Minute,
		RefreshExpiry: time.Hour,
	})

	token, _, err := m.GenerateAccessToken(1, "user@test.com", 0)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenExpiry(t *testing.T) {
	m := testManager()

	token, _, err := m.GenerateAccessToken(1, "user@test.com", 0)
	require.NoError(t, err)

	exp, err := m.TokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(60*time.Minute), exp, 5*time.Second)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	require.NoError(t, VerifyPassword(hash, "correct horse battery"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong password!"), ErrPasswordMismatch)

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
