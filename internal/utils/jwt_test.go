package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT("secret", "ops@example.com", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestJWT_Rejects(t *testing.T) {
	token, err := GenerateJWT("secret", "ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateJWT("secret", "ops", RoleAdmin, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT("secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateJWT("secret", "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = GenerateJWT("", "ops", RoleAdmin, time.Hour)
	assert.Error(t, err)
}
