package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/internal/auth/store"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

// TwoFactorCodeInput is a TOTP code or a backup code.
type TwoFactorCodeInput struct {
	Code string `json:"code" validate:"required,min=6,max=8,alphanum"`
}

// EnableTwoFactorInput only accepts a TOTP code, there are no backup codes
// before 2FA is enabled.
type EnableTwoFactorInput struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// SecondFactor checks a TOTP-or-backup-code proof for a user with 2FA
// enabled. Shared by second-factor login and the protected 2FA operations.
type SecondFactor struct {
	Store    store.Store
	TOTP     *TOTPVerifier
	Attempts AttemptLimiter
}

func (p *SecondFactor) limiter() AttemptLimiter {
	if p.Attempts == nil {
		return NoopLimiter{}
	}
	return p.Attempts
}

// checkLimit fails open when the limiter backend is unreachable.
func (p *SecondFactor) checkLimit(ctx context.Context, userID int64) error {
	err := p.limiter().Check(ctx, userID)
	if err == nil || errors.Is(err, ErrTooManyAttempts) {
		return err
	}
	slogx.FromContext(ctx).Warn("attempt limiter unavailable", slog.Any("err", err))
	return nil
}

func (p *SecondFactor) recordFailure(ctx context.Context, userID int64) {
	if err := p.limiter().RecordFailure(ctx, userID); err != nil {
		slogx.FromContext(ctx).Warn("attempt limiter unavailable", slog.Any("err", err))
	}
}

func (p *SecondFactor) reset(ctx context.Context, userID int64) {
	if err := p.limiter().Reset(ctx, userID); err != nil {
		slogx.FromContext(ctx).Warn("attempt limiter unavailable", slog.Any("err", err))
	}
}

// Prove accepts code as a TOTP code first and as a backup code second. A
// matching backup code is removed in the same transaction that reads it, so
// two concurrent requests cannot both spend it.
func (p *SecondFactor) Prove(ctx context.Context, userID int64, code string) (domain.SecondFactorMethod, error) {
	l := slogx.FromContext(ctx).With(slog.Int64("user_id", userID))

	if err := p.checkLimit(ctx, userID); err != nil {
		l.Warn("second factor locked out")
		return "", err
	}

	state, err := p.Store.Users().GetTwoFactorState(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load 2FA state: %w", err)
	}
	if !state.Enabled || !state.HasSecret() {
		return "", ErrTwoFactorNotEnabled
	}

	code = normalizeCode(code)

	if p.TOTP.Validate(code, *state.Secret) {
		p.reset(ctx, userID)
		return domain.SecondFactorTOTP, nil
	}

	var used bool
	err = p.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		used, err = tx.Users().ConsumeBackupCode(ctx, userID, code)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to consume backup code: %w", err)
	}
	if used {
		l.Info("backup code consumed")
		p.reset(ctx, userID)
		return domain.SecondFactorBackupCode, nil
	}

	p.recordFailure(ctx, userID)
	l.Info("second factor rejected")
	return "", ErrInvalidTwoFactorCode
}

// TwoFactorService manages enrollment: setup, enable, verify, disable,
// backup code regeneration and status.
type TwoFactorService struct {
	Store        store.Store
	TOTP         *TOTPVerifier
	SecondFactor *SecondFactor
}

// Setup stores a fresh pending secret, replacing any earlier pending one.
// 2FA stays disabled until Enable succeeds.
func (s *TwoFactorService) Setup(ctx context.Context, userID int64) (domain.TwoFactorSetup, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TwoFactorSetup{}, ErrUserNotFound
		}
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to load user: %w", err)
	}
	if user.TwoFactor.Enabled {
		return domain.TwoFactorSetup{}, ErrTwoFactorAlreadyEnabled
	}

	setup, err := s.TOTP.Generate(fmt.Sprintf("%s (%s)", user.Name, user.Email))
	if err != nil {
		return domain.TwoFactorSetup{}, err
	}

	if err := s.Store.Users().SetTwoFactorSecret(ctx, userID, setup.Secret); err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to store 2FA secret: %w", err)
	}

	slogx.FromContext(ctx).Info("2FA setup started", slog.Int64("user_id", userID))
	return setup, nil
}

// Enable checks a TOTP code against the pending secret, turns 2FA on and
// returns the only copy of the first backup code batch.
func (s *TwoFactorService) Enable(ctx context.Context, userID int64, in EnableTwoFactorInput) ([]string, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	state, err := s.Store.Users().GetTwoFactorState(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load 2FA state: %w", err)
	}
	if state.Enabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}
	if !state.HasSecret() {
		return nil, ErrTwoFactorNotConfigured
	}

	if err := s.SecondFactor.checkLimit(ctx, userID); err != nil {
		return nil, err
	}
	if !s.TOTP.Validate(in.Code, *state.Secret) {
		s.SecondFactor.recordFailure(ctx, userID)
		return nil, ErrInvalidTwoFactorCode
	}
	s.SecondFactor.reset(ctx, userID)

	codes, err := GenerateBackupCodes()
	if err != nil {
		return nil, err
	}
	if err := s.Store.Users().EnableTwoFactor(ctx, userID, codes); err != nil {
		return nil, fmt.Errorf("failed to enable 2FA: %w", err)
	}

	slogx.FromContext(ctx).Info("2FA enabled", slog.Int64("user_id", userID))
	return codes, nil
}

// Verify checks a second factor for an already signed-in user.
func (s *TwoFactorService) Verify(ctx context.Context, userID int64, in TwoFactorCodeInput) (domain.SecondFactorMethod, error) {
	if err := Validate(in); err != nil {
		return "", err
	}
	return s.SecondFactor.Prove(ctx, userID, in.Code)
}

// Disable turns 2FA off after one more proof and wipes secret and codes.
func (s *TwoFactorService) Disable(ctx context.Context, userID int64, in TwoFactorCodeInput) error {
	if err := Validate(in); err != nil {
		return err
	}
	if _, err := s.SecondFactor.Prove(ctx, userID, in.Code); err != nil {
		return err
	}

	if err := s.Store.Users().DisableTwoFactor(ctx, userID); err != nil {
		return fmt.Errorf("failed to disable 2FA: %w", err)
	}

	slogx.FromContext(ctx).Info("2FA disabled", slog.Int64("user_id", userID))
	return nil
}

// RegenerateBackupCodes replaces every backup code after one more proof.
// Codes from earlier batches stop working immediately.
func (s *TwoFactorService) RegenerateBackupCodes(ctx context.Context, userID int64, in TwoFactorCodeInput) ([]string, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	if _, err := s.SecondFactor.Prove(ctx, userID, in.Code); err != nil {
		return nil, err
	}

	codes, err := GenerateBackupCodes()
	if err != nil {
		return nil, err
	}
	if err := s.Store.Users().ReplaceBackupCodes(ctx, userID, codes); err != nil {
		return nil, fmt.Errorf("failed to store backup codes: %w", err)
	}

	slogx.FromContext(ctx).Info("backup codes regenerated", slog.Int64("user_id", userID))
	return codes, nil
}

// Status reports enrollment without exposing the secret or the codes.
func (s *TwoFactorService) Status(ctx context.Context, userID int64) (domain.TwoFactorStatus, error) {
	state, err := s.Store.Users().GetTwoFactorState(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TwoFactorStatus{}, ErrUserNotFound
		}
		return domain.TwoFactorStatus{}, fmt.Errorf("failed to load 2FA state: %w", err)
	}

	return domain.TwoFactorStatus{
		Enabled:          state.Enabled,
		HasBackupCodes:   len(state.BackupCodes) > 0,
		BackupCodesCount: len(state.BackupCodes),
	}, nil
}
