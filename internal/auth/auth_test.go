package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	a := NewAuthenticator("test-secret")

	token, err := a.GenerateJWT("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := a.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthenticator("secret-one")
	verifier := NewAuthenticator("secret-two")

	token, err := issuer.GenerateJWT("alice")
	require.NoError(t, err)

	_, err = verifier.ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	a := NewAuthenticator("test-secret")

	_, err := a.ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
