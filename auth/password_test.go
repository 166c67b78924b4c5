package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/tasklist-go/auth"
)

func TestHashPassword(t *testing.T) {
	hashed, err := auth.HashPassword("password1")
	require.NoError(t, err)
	assert.NotEqual(t, "password1", hashed)

	// Salted hashing: the same input never produces the same output twice.
	again, err := auth.HashPassword("password1")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again)
}

func TestCheckPassword(t *testing.T) {
	hashed, err := auth.HashPassword("password1")
	require.NoError(t, err)

	assert.True(t, auth.CheckPassword("password1", hashed))
	assert.False(t, auth.CheckPassword("password2", hashed))
	assert.False(t, auth.CheckPassword("", hashed))
	assert.False(t, auth.CheckPassword("password1", "not-a-hash"))
}
