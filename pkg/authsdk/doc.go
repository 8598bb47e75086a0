/*
Package authsdk is the client SDK and shared wire types for the Lost & Found
authentication service.

# Client

A Client keeps the session cookies (accessToken, refreshToken) in its own
cookie jar, the same way a browser would:

	c := authsdk.NewClient("https://auth.example.com")

	_, err := c.Register(ctx, authsdk.RegisterRequest{
		Email:          "alice@example.com",
		Password:       "Passw0rd!",
		Name:           "Alice",
		RecaptchaToken: token,
	})

	res, err := c.Login(ctx, authsdk.LoginRequest{Email: email, Password: pw, RecaptchaToken: token})
	if res.Requires2FA {
		res, err = c.LoginWithTwoFactor(ctx, authsdk.LoginTwoFactorRequest{
			Email:         email,
			Password:      pw,
			TwoFactorCode: code,
		})
	}

The second step re-sends the password because the service keeps no pending
login state.

# Two-factor enrollment

	setup, _ := c.SetupTwoFactor(ctx)        // QR code + manual key
	codes, _ := c.EnableTwoFactor(ctx, totp) // 10 single-use backup codes
	st, _ := c.TwoFactorStatus(ctx)

VerifyTwoFactor, DisableTwoFactor and RegenerateBackupCodes accept either a
TOTP code or a backup code. A backup code is spent when accepted.

# Errors

Every non-2xx response is returned as *APIError. Compare the Code field, or
use IsCode:

	if authsdk.IsCode(err, authsdk.ErrorCodeInvalidCredentials) { ... }

The server writes the same predefined values (ErrInvalidCredentials and so
on), so both sides agree on status, code and message.

# Keeping a session alive

	s := authsdk.NewSession(c)
	h := s.StartAutoRefresh(ctx, authsdk.DefaultRefreshInterval)
	...
	s.Logout(ctx) // stops h, then clears cookies

The refresher stops on its own after the first failed refresh, h.Err reports
why.
*/
package authsdk
