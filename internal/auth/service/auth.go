package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/internal/auth/store"
	"github.com/aussiebroadwan/lostfound/pkg/cryptox"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

type RegisterInput struct {
	Email       string  `json:"email"        validate:"required,email,max=255"`
	Password    string  `json:"password"     validate:"required,min=8,max=72"`
	Name        string  `json:"name"         validate:"required,min=1,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

type SecondFactorLoginInput struct {
	Email         string `json:"email"         validate:"required,email"`
	Password      string `json:"password"      validate:"required,min=1"`
	TwoFactorCode string `json:"twoFactorCode" validate:"required,min=6,max=8,alphanum"`
}

// AuthService drives the login state machine: credentials first, then a
// second factor when the account has 2FA enabled. Nothing about a pending
// second factor is stored, the client re-sends email and password.
type AuthService struct {
	Store        store.Store
	Sessions     *SessionIssuer
	SecondFactor *SecondFactor
}

// Register creates a new account with the default role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in); err != nil {
		return domain.User{}, err
	}
	l := slogx.FromContext(ctx)
	email := in.Email

	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.User{}, ErrDuplicateEmail
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	var phone *string
	if in.PhoneNumber != nil && strings.TrimSpace(*in.PhoneNumber) != "" {
		p := strings.TrimSpace(*in.PhoneNumber)
		phone = &p
	}

	id, err := s.Store.Users().CreateUser(ctx, domain.NewUser{
		Email:        email,
		PasswordHash: hash,
		Name:         in.Name,
		PhoneNumber:  phone,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	l.Info("user registered", slog.Int64("user_id", id))
	return s.Store.Users().GetUserByID(ctx, id)
}

// Login checks the first factor. Accounts with 2FA enabled get
// RequiresTwoFactor and no session, everyone else gets a session pair.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (domain.LoginResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := Validate(in); err != nil {
		return domain.LoginResult{}, err
	}

	user, err := s.authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return domain.LoginResult{}, err
	}

	if user.TwoFactor.Enabled {
		slogx.FromContext(ctx).Info("second factor required", slog.Int64("user_id", user.ID))
		return domain.LoginResult{RequiresTwoFactor: true, User: user}, nil
	}

	pair, err := s.Sessions.Issue(user)
	if err != nil {
		return domain.LoginResult{}, err
	}
	return domain.LoginResult{Session: pair, User: user}, nil
}

// LoginWithTwoFactor re-checks the credentials and then the second factor,
// TOTP first and a backup code second.
func (s *AuthService) LoginWithTwoFactor(ctx context.Context, in SecondFactorLoginInput) (domain.SecondFactorResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := Validate(in); err != nil {
		return domain.SecondFactorResult{}, err
	}

	user, err := s.authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return domain.SecondFactorResult{}, err
	}

	method, err := s.SecondFactor.Prove(ctx, user.ID, in.TwoFactorCode)
	if err != nil {
		return domain.SecondFactorResult{}, err
	}

	pair, err := s.Sessions.Issue(user)
	if err != nil {
		return domain.SecondFactorResult{}, err
	}

	return domain.SecondFactorResult{
		Session:        pair,
		User:           user,
		Method:         method,
		BackupCodeUsed: method == domain.SecondFactorBackupCode,
	}, nil
}

// Refresh mints a new access token from a refresh token. The role is read
// from the store so a role change applies at the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	userID, err := s.Sessions.ParseRefresh(ctx, refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", time.Time{}, ErrInvalidSession
		}
		return "", time.Time{}, err
	}

	return s.Sessions.Refresh(ctx, refreshToken, user.Role)
}

// authenticate returns the same ErrInvalidCredentials for an unknown email
// and a wrong password.
func (s *AuthService) authenticate(ctx context.Context, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash)
			l.Info("login failed", slog.String("reason", "unknown email"))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unreadable", slog.Int64("user_id", user.ID), slog.Any("err", err))
		}
		l.Info("login failed", slog.String("reason", "wrong password"), slog.Int64("user_id", user.ID))
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
