package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"unicode password", "contraseña🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$2a$10$"), "hash should be bcrypt cost 10")
			require.NotContains(t, hash, tt.password)

			require.NoError(t, VerifyPassword(tt.password, hash))
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2, "hashes of the same password should differ")
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	err = VerifyPassword("battery staple", hash)
	require.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	err := VerifyPassword("anything", "not-a-bcrypt-hash")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestDummyHash(t *testing.T) {
	require.True(t, strings.HasPrefix(DummyHash, "$2a$10$"))
	require.ErrorIs(t, VerifyPassword("guess", DummyHash), ErrPasswordMismatch)
}
