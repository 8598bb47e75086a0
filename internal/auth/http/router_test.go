package http_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authhttp "github.com/aussiebroadwan/lostfound/internal/auth/http"
	"github.com/aussiebroadwan/lostfound/internal/auth/service"
	"github.com/aussiebroadwan/lostfound/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/lostfound/internal/auth/verification"
	"github.com/aussiebroadwan/lostfound/pkg/authsdk"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const testPassword = "password123"

type testServer struct {
	srv *httptest.Server
	now time.Time
}

// newTestServer serves the full router over TLS, since the session cookies
// are Secure and the cookie jar only returns them to https URLs.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithVerifier(t, verification.PermissiveVerifier{})
}

func newTestServerWithVerifier(t *testing.T, v verification.Verifier) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions, err := service.NewSessionIssuer(
		[]byte("router-access-secret-0123456789"),
		[]byte("router-refresh-secret-0123456789"),
		"lostfound-test", 10*time.Minute, 30*time.Minute,
	)
	require.NoError(t, err)

	ts := &testServer{now: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)}
	totpVerifier := &service.TOTPVerifier{
		Issuer: "Objetos Perdidos UN",
		Now:    func() time.Time { return ts.now },
	}
	second := &service.SecondFactor{Store: st, TOTP: totpVerifier}

	router := authhttp.NewRouter(sessions.AccessVerifier, "test", st, slogx.Discard(), false)
	router.AuthService = &service.AuthService{Store: st, Sessions: sessions, SecondFactor: second}
	router.TwoFactorService = &service.TwoFactorService{Store: st, TOTP: totpVerifier, SecondFactor: second}
	router.UserService = &service.UserService{Store: st}
	router.Verification = v
	router.ApplyRoutes()

	ts.srv = httptest.NewTLSServer(router)
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) client() *authsdk.Client {
	c := authsdk.NewClient(ts.srv.URL)
	c.HTTPClient.Transport = ts.srv.Client().Transport
	return c
}

func (ts *testServer) code(t *testing.T, secret string, steps int) string {
	t.Helper()
	c, err := totp.GenerateCodeCustom(secret, ts.now.Add(time.Duration(steps)*30*time.Second), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return c
}

// post sends a raw body and returns the status and body.
func (ts *testServer) post(t *testing.T, path, body string) (int, string) {
	t.Helper()
	resp, err := ts.srv.Client().Post(ts.srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func register(t *testing.T, c *authsdk.Client, email string) {
	t.Helper()
	_, err := c.Register(context.Background(), authsdk.RegisterRequest{
		Email:          email,
		Password:       testPassword,
		Name:           "Ana",
		RecaptchaToken: "token",
	})
	require.NoError(t, err)
}

func login(t *testing.T, c *authsdk.Client, email string) *authsdk.LoginResponse {
	t.Helper()
	resp, err := c.Login(context.Background(), authsdk.LoginRequest{
		Email:          email,
		Password:       testPassword,
		RecaptchaToken: "token",
	})
	require.NoError(t, err)
	return resp
}

// enroll signs in and enables 2FA, returning the secret and backup codes.
func enroll(t *testing.T, ts *testServer, c *authsdk.Client, email string) (string, []string) {
	t.Helper()
	ctx := context.Background()

	register(t, c, email)
	login(t, c, email)

	setup, err := c.SetupTwoFactor(ctx)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))
	require.NotEmpty(t, setup.ManualEntryKey)

	codes, err := c.EnableTwoFactor(ctx, ts.code(t, setup.ManualEntryKey, 0))
	require.NoError(t, err)
	require.Len(t, codes.BackupCodes, 10)

	return setup.ManualEntryKey, codes.BackupCodes
}

func requireAPIError(t *testing.T, err error, want *authsdk.APIError) {
	t.Helper()
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *APIError, got %v", err)
	require.Equal(t, want.StatusCode, apiErr.StatusCode)
	require.Equal(t, want.Code, apiErr.Code)
	require.Equal(t, want.Message, apiErr.Message)
}

type verifierFunc func(ctx context.Context, token, remoteIP string) error

func (f verifierFunc) Verify(ctx context.Context, token, remoteIP string) error {
	return f(ctx, token, remoteIP)
}

func TestVerificationFailures(t *testing.T) {
	ctx := context.Background()
	req := authsdk.RegisterRequest{
		Email:          "ana@example.com",
		Password:       testPassword,
		Name:           "Ana",
		RecaptchaToken: "token",
	}

	t.Run("rejected token", func(t *testing.T) {
		ts := newTestServerWithVerifier(t, verifierFunc(func(context.Context, string, string) error {
			return fmt.Errorf("%w: timeout-or-duplicate", verification.ErrRejected)
		}))
		_, err := ts.client().Register(ctx, req)
		requireAPIError(t, err, authsdk.ErrExternalVerificationFailed)
	})

	t.Run("provider unreachable", func(t *testing.T) {
		ts := newTestServerWithVerifier(t, verifierFunc(func(context.Context, string, string) error {
			return errors.New("dial tcp: connection refused")
		}))
		_, err := ts.client().Register(ctx, req)
		requireAPIError(t, err, authsdk.ErrServerError)

		_, err = ts.client().Login(ctx, authsdk.LoginRequest{
			Email:          req.Email,
			Password:       req.Password,
			RecaptchaToken: "token",
		})
		requireAPIError(t, err, authsdk.ErrServerError)
	})
}

func TestRegisterLoginLogout(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	ctx := context.Background()

	register(t, c, "ana@example.com")
	require.False(t, c.HasSession(), "register must not sign in")

	resp := login(t, c, "ANA@example.com")
	require.False(t, resp.Requires2FA)
	require.NotEmpty(t, c.Cookie(authsdk.AccessTokenCookie))
	require.NotEmpty(t, c.Cookie(authsdk.RefreshTokenCookie))

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", me.Email)
	require.Equal(t, "user", me.Role)
	require.False(t, me.TwoFactorEnabled)

	_, err = c.Logout(ctx)
	require.NoError(t, err)
	require.False(t, c.HasSession())

	_, err = c.Me(ctx)
	requireAPIError(t, err, authsdk.ErrUnauthorized)

	_, err = c.RefreshToken(ctx)
	requireAPIError(t, err, authsdk.ErrMissingRefreshToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()

	register(t, c, "ana@example.com")

	_, err := c.Register(context.Background(), authsdk.RegisterRequest{
		Email:          "Ana@Example.com",
		Password:       testPassword,
		Name:           "Otra",
		RecaptchaToken: "token",
	})
	requireAPIError(t, err, authsdk.ErrDuplicateEmail)
}

func TestRegisterRequiresVerificationToken(t *testing.T) {
	ts := newTestServer(t)

	_, err := ts.client().Register(context.Background(), authsdk.RegisterRequest{
		Email:    "ana@example.com",
		Password: testPassword,
		Name:     "Ana",
	})
	requireAPIError(t, err, authsdk.ErrMissingVerificationToken)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	_, err := ts.client().Register(context.Background(), authsdk.RegisterRequest{
		Email:          "not-an-email",
		Password:       "short",
		Name:           "Ana",
		RecaptchaToken: "token",
	})
	requireAPIError(t, err, authsdk.ErrValidation)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Contains(t, apiErr.Details, "email")
	require.Contains(t, apiErr.Details, "password")
}

func TestUnknownFieldsRejected(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.post(t, "/auth/login",
		`{"email":"ana@example.com","password":"x","recaptchaToken":"t","admin":true}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, authsdk.ErrorCodeValidation)
}

func TestLoginDoesNotRevealAccounts(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.client(), "ana@example.com")

	statusUnknown, bodyUnknown := ts.post(t, "/auth/login",
		`{"email":"nadie@example.com","password":"password123","recaptchaToken":"t"}`)
	statusWrong, bodyWrong := ts.post(t, "/auth/login",
		`{"email":"ana@example.com","password":"wrong-password","recaptchaToken":"t"}`)

	require.Equal(t, http.StatusUnauthorized, statusUnknown)
	require.Equal(t, statusUnknown, statusWrong)
	require.JSONEq(t, bodyUnknown, bodyWrong)
}

func TestRefreshToken(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	ctx := context.Background()

	_, err := c.RefreshToken(ctx)
	requireAPIError(t, err, authsdk.ErrMissingRefreshToken)

	register(t, c, "ana@example.com")
	login(t, c, "ana@example.com")
	refresh := c.Cookie(authsdk.RefreshTokenCookie)

	_, err = c.RefreshToken(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, c.Cookie(authsdk.AccessTokenCookie))
	require.Equal(t, refresh, c.Cookie(authsdk.RefreshTokenCookie), "refresh token is not rotated")
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()

	register(t, c, "ana@example.com")
	login(t, c, "ana@example.com")

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/auth/refresh-token", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: authsdk.RefreshTokenCookie, Value: c.Cookie(authsdk.AccessTokenCookie)})

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTwoFactorLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	ctx := context.Background()

	secret, _ := enroll(t, ts, c, "ana@example.com")

	status, err := c.TwoFactorStatus(ctx)
	require.NoError(t, err)
	require.True(t, status.Enabled)
	require.Equal(t, 10, status.BackupCodesCount)

	_, err = c.Logout(ctx)
	require.NoError(t, err)

	resp := login(t, c, "ana@example.com")
	require.True(t, resp.Requires2FA)
	require.NotEmpty(t, resp.Hint)
	require.False(t, c.HasSession(), "first factor alone must not set cookies")

	// Three steps back is outside the accepted drift.
	_, err = c.LoginWithTwoFactor(ctx, authsdk.LoginTwoFactorRequest{
		Email:         "ana@example.com",
		Password:      testPassword,
		TwoFactorCode: ts.code(t, secret, -3),
	})
	requireAPIError(t, err, authsdk.ErrInvalidTwoFactorLogin)
	require.False(t, c.HasSession())

	resp, err = c.LoginWithTwoFactor(ctx, authsdk.LoginTwoFactorRequest{
		Email:         "ana@example.com",
		Password:      testPassword,
		TwoFactorCode: ts.code(t, secret, -2),
	})
	require.NoError(t, err)
	require.Empty(t, resp.Warning)
	require.True(t, c.HasSession())
}

func TestTwoFactorLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()

	secret, _ := enroll(t, ts, c, "ana@example.com")

	_, err := c.LoginWithTwoFactor(context.Background(), authsdk.LoginTwoFactorRequest{
		Email:         "ana@example.com",
		Password:      "wrong-password",
		TwoFactorCode: ts.code(t, secret, 0),
	})
	requireAPIError(t, err, authsdk.ErrInvalidCredentials)
}

func TestBackupCodeIsSingleUse(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	ctx := context.Background()

	_, codes := enroll(t, ts, c, "ana@example.com")

	loginWith := func(code string) (*authsdk.LoginResponse, error) {
		return ts.client().LoginWithTwoFactor(ctx, authsdk.LoginTwoFactorRequest{
			Email:         "ana@example.com",
			Password:      testPassword,
			TwoFactorCode: code,
		})
	}

	resp, err := loginWith(strings.ToLower(codes[0]))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Warning)

	_, err = loginWith(codes[0])
	requireAPIError(t, err, authsdk.ErrInvalidTwoFactorLogin)

	status, err := c.TwoFactorStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, 9, status.BackupCodesCount)
}

func TestTwoFactorVerifyDisableAndRegenerate(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	ctx := context.Background()

	secret, codes := enroll(t, ts, c, "ana@example.com")

	msg, err := c.VerifyTwoFactor(ctx, ts.code(t, secret, 1))
	require.NoError(t, err)
	require.Empty(t, msg.Warning)

	msg, err = c.VerifyTwoFactor(ctx, codes[1])
	require.NoError(t, err)
	require.NotEmpty(t, msg.Warning)

	regenerated, err := c.RegenerateBackupCodes(ctx, codes[2])
	require.NoError(t, err)
	require.Len(t, regenerated.BackupCodes, 10)

	// The previous batch is gone.
	_, err = c.VerifyTwoFactor(ctx, codes[3])
	requireAPIError(t, err, authsdk.ErrInvalidTwoFactorCode)

	_, err = c.DisableTwoFactor(ctx, "000000")
	requireAPIError(t, err, authsdk.ErrInvalidTwoFactorCode)

	_, err = c.DisableTwoFactor(ctx, ts.code(t, secret, 0))
	require.NoError(t, err)

	status, err := c.TwoFactorStatus(ctx)
	require.NoError(t, err)
	require.False(t, status.Enabled)
	require.Zero(t, status.BackupCodesCount)

	_, err = c.VerifyTwoFactor(ctx, ts.code(t, secret, 0))
	requireAPIError(t, err, authsdk.ErrTwoFactorNotEnabled)
}

func TestTwoFactorEnableWithoutSetup(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()

	register(t, c, "ana@example.com")
	login(t, c, "ana@example.com")

	_, err := c.EnableTwoFactor(context.Background(), "123456")
	requireAPIError(t, err, authsdk.ErrTwoFactorNotConfigured)
}

func TestTwoFactorRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	ctx := context.Background()

	_, err := c.SetupTwoFactor(ctx)
	requireAPIError(t, err, authsdk.ErrUnauthorized)

	_, err = c.TwoFactorStatus(ctx)
	requireAPIError(t, err, authsdk.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	ctx := context.Background()

	register(t, c, "ana@example.com")
	register(t, c, "luis@example.com")
	login(t, c, "ana@example.com")

	name := "Ana María"
	phone := "3001234567"
	me, err := c.UpdateProfile(ctx, authsdk.UpdateProfileRequest{Name: &name, PhoneNumber: &phone})
	require.NoError(t, err)
	require.Equal(t, name, me.Name)
	require.NotNil(t, me.PhoneNumber)
	require.Equal(t, phone, *me.PhoneNumber)

	taken := "luis@example.com"
	_, err = c.UpdateProfile(ctx, authsdk.UpdateProfileRequest{Email: &taken})
	requireAPIError(t, err, authsdk.ErrDuplicateEmail)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	c := ts.client()
	ctx := context.Background()

	live, err := c.Livez(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := c.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}

func TestRequestIDEchoed(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/auth/logout", bytes.NewReader(nil))
	require.NoError(t, err)

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(slogx.RequestIDHeader))
}
