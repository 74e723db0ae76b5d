// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Str0ngPassw0rd!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	valid, err := VerifyPassword("Str0ngPassw0rd!", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, valid)

	// Same password, different salt.
	again, err := HashPassword("Str0ngPassw0rd!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("Str0ngPassw0rd!")
	require.NoError(t, err)

	valid, err := VerifyPasswordTimingSafe("Str0ngPassw0rd!", &hash)
	require.NoError(t, err)
	assert.True(t, valid)

	// Nil hash still burns a verification so unknown emails cost the
	// same as wrong passwords.
	valid, err = VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestRefreshTokenHashing(t *testing.T) {
	token, err := GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	other, err := GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	hash := HashToken(token)
	assert.True(t, CompareTokenHash(token, hash))
	assert.False(t, CompareTokenHash(other, hash))
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"milano", "milano"},
		{"100%", `100\%`},
		{"via_roma", `via\_roma`},
		{`c:\tmp`, `c:\\tmp`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLike(tt.in))
		})
	}
}
