package auth_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/lostfound/pkg/authsdk"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, client construction, and assertions.
 */

const (
	testImageName = "lostfound-auth-test:latest"

	testPassword       = "Passw0rd!123"
	testRecaptchaToken = "e2e-token"
)

// TestMain builds the Docker image once before all tests and cleans it up
// after. The suite only runs with E2E=1 since it needs a Docker daemon.
func TestMain(m *testing.M) {
	if os.Getenv("E2E") != "1" {
		fmt.Fprintln(os.Stdout, "skipping auth e2e suite, set E2E=1 to run it")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// relaxedRateLimits keeps the strict production limits from failing tests
// that make many rapid requests.
var relaxedRateLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_WINDOW_SEC": "60",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// setupAuthContainer starts the auth service with relaxed rate limits and
// returns the base URL.
func setupAuthContainer(t *testing.T) (string, func()) {
	return startAuthContainer(t, relaxedRateLimits)
}

// setupAuthContainerWithDefaultRateLimits starts the auth service with the
// production rate limits. Only for tests of the limits themselves.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	return startAuthContainer(t, nil)
}

func startAuthContainer(t *testing.T, extraEnv map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"AUTH_DATABASE_FILE":   "/data/lostfound.db",
		"AUTH_ISSUER":          "lostfound-auth",
		"ACCESS_TOKEN_SECRET":  "e2e-access-secret-0123456789abcdef",
		"REFRESH_TOKEN_SECRET": "e2e-refresh-secret-0123456789abcdef",
		"ENV":                  "test",
		"LOG_LEVEL":            "info",
		"LOG_FORMAT":           "json",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// plainHTTPJar stores and returns cookies as if the service were served over
// https, so the Secure session cookies survive the plain HTTP container port.
type plainHTTPJar struct {
	jar *cookiejar.Jar
}

func (j plainHTTPJar) secure(u *url.URL) *url.URL {
	cp := *u
	cp.Scheme = "https"
	return &cp
}

func (j plainHTTPJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(j.secure(u), cookies)
}

func (j plainHTTPJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(j.secure(u))
}

// newClient returns an SDK client with its own browser-like cookie session.
func newClient(t *testing.T, baseURL string) *authsdk.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	c := authsdk.NewClient(baseURL)
	c.HTTPClient.Jar = plainHTTPJar{jar: jar}
	return c
}

// registerAndLogin creates an account and signs the client in.
func registerAndLogin(t *testing.T, c *authsdk.Client, email string) {
	t.Helper()
	ctx := t.Context()

	_, err := c.Register(ctx, authsdk.RegisterRequest{
		Email:          email,
		Password:       testPassword,
		Name:           "E2E User",
		RecaptchaToken: testRecaptchaToken,
	})
	require.NoError(t, err, "register should succeed")

	resp, err := c.Login(ctx, authsdk.LoginRequest{
		Email:          email,
		Password:       testPassword,
		RecaptchaToken: testRecaptchaToken,
	})
	require.NoError(t, err, "login should succeed")
	require.False(t, resp.Requires2FA)
	require.True(t, c.HasSession(), "login should set session cookies")
}

// currentCode returns the TOTP code for secret at the current wall clock.
func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

// assertAPIError checks that err is an *APIError with the given code.
func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, authsdk.IsCode(err, code), "expected %s, got %v", code, err)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
