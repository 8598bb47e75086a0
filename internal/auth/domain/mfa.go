package domain

// TwoFactorState is the 2FA enrollment embedded in a user record.
//
// A secret may exist while Enabled is false only between setup and enable.
// When Enabled is false after a disable, Secret and BackupCodes are cleared.
type TwoFactorState struct {
	Enabled     bool
	Secret      *string  // base32 TOTP secret (nullable)
	BackupCodes []string // unused recovery codes, 8 uppercase hex chars each
}

// HasSecret reports whether a TOTP secret is stored.
func (s TwoFactorState) HasSecret() bool {
	return s.Secret != nil && *s.Secret != ""
}

// TwoFactorSetup is returned once when 2FA setup is initiated.
type TwoFactorSetup struct {
	Secret          string // base32 secret for manual entry
	ProvisioningURI string // otpauth:// URL
	QRCode          string // data:image/png;base64,... rendering of ProvisioningURI
}

// TwoFactorStatus is the only view of 2FA state exposed after setup. Secrets
// and raw codes never appear here.
type TwoFactorStatus struct {
	Enabled          bool
	HasBackupCodes   bool
	BackupCodesCount int
}

// SecondFactorMethod identifies which proof satisfied a 2FA check.
type SecondFactorMethod string

const (
	SecondFactorTOTP       SecondFactorMethod = "totp"
	SecondFactorBackupCode SecondFactorMethod = "backup_code"
)
