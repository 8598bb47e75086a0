package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod     = 30
	totpSkew       = 2 // steps either side of now
	totpSecretSize = 20
	qrCodeSize     = 200
)

// TOTPVerifier checks and provisions RFC 6238 codes: 6 digits, SHA1, 30s
// period, accepting ±2 steps of clock drift.
type TOTPVerifier struct {
	Issuer string
	Now    func() time.Time // defaults to time.Now
}

func (v *TOTPVerifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Validate reports whether code is valid for secret right now.
func (v *TOTPVerifier) Validate(code, secret string) bool {
	return v.ValidateAt(code, secret, v.now())
}

// ValidateAt reports whether code is valid for secret at t. Malformed codes
// and secrets are simply invalid.
func (v *TOTPVerifier) ValidateAt(code, secret string, t time.Time) bool {
	if secret == "" || len(code) != int(otp.DigitsSix) {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, t.UTC(), validateOpts())
	return err == nil && ok
}

// Generate creates a fresh secret for accountName together with its
// otpauth:// URI and a PNG QR code of that URI as a data URL.
func (v *TOTPVerifier) Generate(accountName string) (domain.TwoFactorSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      v.Issuer,
		AccountName: accountName,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to render QR code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return domain.TwoFactorSetup{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		QRCode:          "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
