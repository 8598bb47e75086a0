package service

import (
	"context"
	"strings"
	"testing"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	phone := " 3001234567 "
	u, err := env.auth.Register(ctx, RegisterInput{
		Email:       " Ana@Example.COM ",
		Password:    "password123",
		Name:        "Ana",
		PhoneNumber: &phone,
	})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", u.Email)
	require.Equal(t, domain.RoleUser, u.Role)
	require.Equal(t, "3001234567", *u.PhoneNumber)
	require.NotEqual(t, "password123", u.PasswordHash)
	require.False(t, u.TwoFactor.Enabled)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "password456", Name: "Other"})
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{Email: "not-an-email", Password: "short", Name: ""})
		require.ErrorIs(t, err, ErrValidation)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "email")
		require.Contains(t, verr.Fields, "password")
		require.Contains(t, verr.Fields, "name")
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{Email: "b@x.co", Password: "password123", Name: "   "})
		require.ErrorIs(t, err, ErrValidation)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "name")

		_, err = env.store.Users().GetUserByEmail(ctx, "b@x.co")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("name is trimmed", func(t *testing.T) {
		u, err := env.auth.Register(ctx, RegisterInput{Email: "c@x.co", Password: "password123", Name: "  Ana  "})
		require.NoError(t, err)
		require.Equal(t, "Ana", u.Name)
	})
}

func TestLoginWithoutTwoFactor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.register(t, "ana@x.co")

	res, err := env.auth.Login(ctx, LoginInput{Email: "ana@x.co", Password: "password123"})
	require.NoError(t, err)
	require.False(t, res.RequiresTwoFactor)
	require.NotEmpty(t, res.Session.AccessToken)
	require.NotEmpty(t, res.Session.RefreshToken)

	claims, err := env.sessions.ParseAccess(res.Session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, domain.RoleUser, claims.Role)
}

func TestLoginUnifiedFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ana@x.co")

	_, unknown := env.auth.Login(ctx, LoginInput{Email: "nobody@x.co", Password: "password123"})
	_, wrong := env.auth.Login(ctx, LoginInput{Email: "ana@x.co", Password: "wrong-password"})

	require.ErrorIs(t, unknown, ErrInvalidCredentials)
	require.ErrorIs(t, wrong, ErrInvalidCredentials)
	require.Equal(t, unknown.Error(), wrong.Error())
}

func TestLoginRequiresSecondFactor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.register(t, "ana@x.co")
	env.enroll(t, u.ID)

	res, err := env.auth.Login(ctx, LoginInput{Email: "ana@x.co", Password: "password123"})
	require.NoError(t, err)
	require.True(t, res.RequiresTwoFactor)
	require.Empty(t, res.Session.AccessToken, "no session before the second factor")
}

func TestLoginWithTwoFactor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.register(t, "ana@x.co")
	secret, codes := env.enroll(t, u.ID)

	login := func(code string) (domain.SecondFactorResult, error) {
		return env.auth.LoginWithTwoFactor(ctx, SecondFactorLoginInput{
			Email:         "ana@x.co",
			Password:      "password123",
			TwoFactorCode: code,
		})
	}

	t.Run("stale totp rejected", func(t *testing.T) {
		_, err := login(env.code(t, secret, -6))
		require.ErrorIs(t, err, ErrInvalidTwoFactorCode)
	})

	t.Run("totp within window accepted", func(t *testing.T) {
		res, err := login(env.code(t, secret, -2))
		require.NoError(t, err)
		require.Equal(t, domain.SecondFactorTOTP, res.Method)
		require.False(t, res.BackupCodeUsed)
		require.NotEmpty(t, res.Session.AccessToken)
	})

	t.Run("backup code accepted once", func(t *testing.T) {
		res, err := login(codes[0])
		require.NoError(t, err)
		require.True(t, res.BackupCodeUsed)
		require.Equal(t, domain.SecondFactorBackupCode, res.Method)

		_, err = login(codes[0])
		require.ErrorIs(t, err, ErrInvalidTwoFactorCode)

		status, err := env.twoFactor.Status(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, BackupCodeCount-1, status.BackupCodesCount)
	})

	t.Run("lowercase backup code accepted", func(t *testing.T) {
		res, err := login(strings.ToLower(codes[1]))
		require.NoError(t, err)
		require.True(t, res.BackupCodeUsed)
	})

	t.Run("wrong password fails before the second factor", func(t *testing.T) {
		_, err := env.auth.LoginWithTwoFactor(ctx, SecondFactorLoginInput{
			Email:         "ana@x.co",
			Password:      "wrong-password",
			TwoFactorCode: env.code(t, secret, 0),
		})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginWithTwoFactorNotEnabled(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ana@x.co")

	_, err := env.auth.LoginWithTwoFactor(ctx, SecondFactorLoginInput{
		Email:         "ana@x.co",
		Password:      "password123",
		TwoFactorCode: "123456",
	})
	require.ErrorIs(t, err, ErrTwoFactorNotEnabled)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.register(t, "ana@x.co")

	res, err := env.auth.Login(ctx, LoginInput{Email: "ana@x.co", Password: "password123"})
	require.NoError(t, err)

	access, exp, err := env.auth.Refresh(ctx, res.Session.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.False(t, exp.Before(res.Session.AccessExpiresAt))

	claims, err := env.sessions.ParseAccess(access)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, domain.RoleUser, claims.Role)

	t.Run("refresh token is not rotated", func(t *testing.T) {
		_, _, err := env.auth.Refresh(ctx, res.Session.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, _, err := env.auth.Refresh(ctx, res.Session.AccessToken)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("missing token", func(t *testing.T) {
		_, _, err := env.auth.Refresh(ctx, "")
		require.ErrorIs(t, err, ErrInvalidSession)
	})
}
