package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWT()

	token, err := GenerateSessionToken("4fab1cde-1111-2222-3333-444455556666")
	require.NoError(t, err)

	playerID, err := ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "4fab1cde-1111-2222-3333-444455556666", playerID)
}

func TestSessionToken_Tampered(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWT()

	token, err := GenerateSessionToken("12345")
	require.NoError(t, err)

	_, err = ParseSessionToken(token + "x")
	assert.Error(t, err)
}

func TestSessionToken_Garbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWT()

	_, err := ParseSessionToken("not-a-token")
	assert.Error(t, err)
}
