package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/internal/auth/store/drivers/sqlite"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

var (
	testAccessSecret  = []byte("test-access-secret-0123456789abcdef")
	testRefreshSecret = []byte("test-refresh-secret-0123456789abcdef")
)

type testEnv struct {
	store     *sqlite.Store
	auth      *AuthService
	twoFactor *TwoFactorService
	users     *UserService
	sessions  *SessionIssuer
	totp      *TOTPVerifier
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithLimiter(t, nil)
}

func newTestEnvWithLimiter(t *testing.T, limiter AttemptLimiter) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions, err := NewSessionIssuer(testAccessSecret, testRefreshSecret, "lostfound-test", 10*time.Minute, 30*time.Minute)
	require.NoError(t, err)

	env := &testEnv{
		store:    st,
		sessions: sessions,
		now:      time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
	}
	env.totp = &TOTPVerifier{Issuer: "Objetos Perdidos UN", Now: func() time.Time { return env.now }}

	second := &SecondFactor{Store: st, TOTP: env.totp, Attempts: limiter}
	env.auth = &AuthService{Store: st, Sessions: sessions, SecondFactor: second}
	env.twoFactor = &TwoFactorService{Store: st, TOTP: env.totp, SecondFactor: second}
	env.users = &UserService{Store: st}
	return env
}

// register creates a user with password "password123".
func (e *testEnv) register(t *testing.T, email string) domain.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "password123",
		Name:     "Ana",
	})
	require.NoError(t, err)
	return u
}

// code computes the TOTP for secret, offset by steps periods from env.now.
func (e *testEnv) code(t *testing.T, secret string, steps int) string {
	t.Helper()
	c, err := totp.GenerateCodeCustom(secret, e.now.Add(time.Duration(steps)*30*time.Second), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return c
}

// enroll runs setup and enable and returns the secret and the backup codes.
func (e *testEnv) enroll(t *testing.T, userID int64) (string, []string) {
	t.Helper()
	ctx := context.Background()

	setup, err := e.twoFactor.Setup(ctx, userID)
	require.NoError(t, err)

	codes, err := e.twoFactor.Enable(ctx, userID, EnableTwoFactorInput{Code: e.code(t, setup.Secret, 0)})
	require.NoError(t, err)
	return setup.Secret, codes
}
