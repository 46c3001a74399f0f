package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("s3cret")
	token, claims, err := GenerateJWT(secret, time.Hour, 7, "ops@shop.test", "Ops")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := ValidateJWT(secret, token)
	require.NoError(t, err)
	assert.Equal(t, 7, got.UserID)
	assert.Equal(t, "ops@shop.test", got.Email)
	assert.Equal(t, claims.ID, got.ID)
}

func TestJWTRejectsWrongSecretAndExpiry(t *testing.T) {
	token, _, err := GenerateJWT([]byte("a"), time.Hour, 1, "x@y.z", "")
	require.NoError(t, err)
	_, err = ValidateJWT([]byte("b"), token)
	assert.Error(t, err)

	expired, _, err := GenerateJWT([]byte("a"), -time.Minute, 1, "x@y.z", "")
	require.NoError(t, err)
	_, err = ValidateJWT([]byte("a"), expired)
	assert.Error(t, err)
}
