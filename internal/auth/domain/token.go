package domain

import "time"

// SessionPair is what a full login hands back to the transport layer. The
// server keeps no record of it.
type SessionPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// LoginResult is the outcome of the first-factor login step. Exactly one of
// RequiresTwoFactor or Session is meaningful.
type LoginResult struct {
	RequiresTwoFactor bool
	Session           SessionPair
	User              User
}

// SecondFactorResult is the outcome of a completed second-factor login.
type SecondFactorResult struct {
	Session        SessionPair
	User           User
	Method         SecondFactorMethod
	BackupCodeUsed bool
}
