package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", 1, 1)

	access, err := m.GenerateToken(7, "a@example.com", "EDITOR")
	require.NoError(t, err)
	claims, err := m.VerifyToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "EDITOR", claims.Role)
	assert.False(t, claims.Refresh)

	refresh, err := m.GenerateRefreshToken(7, "a@example.com", "EDITOR")
	require.NoError(t, err)
	claims, err = m.VerifyToken(refresh)
	require.NoError(t, err)
	assert.True(t, claims.Refresh)
}

func TestVerifyRejectsOtherSecretAndExpired(t *testing.T) {
	signed, err := NewJWTManager("one", 1, 1).GenerateToken(1, "a@example.com", "USER")
	require.NoError(t, err)
	_, err = NewJWTManager("two", 1, 1).VerifyToken(signed)
	assert.Error(t, err)

	expired, err := NewJWTManager("one", -1, 1).GenerateToken(1, "a@example.com", "USER")
	require.NoError(t, err)
	_, err = NewJWTManager("one", 1, 1).VerifyToken(expired)
	assert.Error(t, err)
}
