package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.register(t, "ana@x.co")
	env.register(t, "bea@x.co")

	updated, err := env.users.UpdateProfile(ctx, u.ID, ProfileInput{Name: ptr("Ana María"), PhoneNumber: ptr("3000000000")})
	require.NoError(t, err)
	require.Equal(t, "Ana María", updated.Name)
	require.Equal(t, "ana@x.co", updated.Email)
	require.Equal(t, "3000000000", *updated.PhoneNumber)

	updated, err = env.users.UpdateProfile(ctx, u.ID, ProfileInput{Email: ptr("ANA@new.co")})
	require.NoError(t, err)
	require.Equal(t, "ana@new.co", updated.Email)

	t.Run("email taken", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, u.ID, ProfileInput{Email: ptr("bea@x.co")})
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("own email is fine", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, u.ID, ProfileInput{Email: ptr("ana@new.co")})
		require.NoError(t, err)
	})

	t.Run("empty update", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, u.ID, ProfileInput{})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, u.ID, ProfileInput{Name: ptr("   ")})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, u.ID, ProfileInput{Email: ptr("nope")})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, 9999, ProfileInput{Name: ptr("Ghost")})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestValidationMessages(t *testing.T) {
	err := Validate(LoginInput{Email: "bad", Password: ""})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields["email"], "correo electrónico")
	require.Contains(t, verr.Fields["password"], "requerido")
	require.Contains(t, verr.Error(), "validation_error")
}
