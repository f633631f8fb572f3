package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	ph := NewPasswordHasher()

	hash, err := ph.HashPassword("desa-rahasia-123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := ph.VerifyPassword("desa-rahasia-123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ph.VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashSaltVaries(t *testing.T) {
	ph := NewPasswordHasher()

	h1, err := ph.HashPassword("same-password")
	require.NoError(t, err)
	h2, err := ph.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordBadFormat(t *testing.T) {
	ph := NewPasswordHasher()

	_, err := ph.VerifyPassword("anything", "not-an-encoded-hash")
	assert.Error(t, err)
}
