package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

// SessionIssuer mints and checks the stateless access/refresh pair. Access
// and refresh tokens use separate secrets, nothing is persisted.
type SessionIssuer struct {
	AccessSigner    jwtx.Signer
	AccessVerifier  jwtx.Verifier
	RefreshSigner   jwtx.Signer
	RefreshVerifier jwtx.Verifier
	Issuer          string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	Now             func() time.Time // defaults to time.Now
}

// NewSessionIssuer wires HS256 signers and verifiers for the two secrets.
func NewSessionIssuer(accessSecret, refreshSecret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*SessionIssuer, error) {
	accessSigner, err := jwtx.NewSignerHS256(accessSecret)
	if err != nil {
		return nil, fmt.Errorf("access token signer: %w", err)
	}
	refreshSigner, err := jwtx.NewSignerHS256(refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("refresh token signer: %w", err)
	}

	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	return &SessionIssuer{
		AccessSigner:    accessSigner,
		AccessVerifier:  jwtx.NewVerifierHS256(accessSecret, issuer, jwtx.TokenTypeAccess),
		RefreshSigner:   refreshSigner,
		RefreshVerifier: jwtx.NewVerifierHS256(refreshSecret, issuer, jwtx.TokenTypeRefresh),
		Issuer:          issuer,
		AccessTTL:       accessTTL,
		RefreshTTL:      refreshTTL,
	}, nil
}

func (s *SessionIssuer) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Issue mints a fresh pair for u.
func (s *SessionIssuer) Issue(u domain.User) (domain.SessionPair, error) {
	now := s.now()

	access, accessExp, err := s.mintAccess(u.ID, u.Role, now)
	if err != nil {
		return domain.SessionPair{}, err
	}

	refreshClaims := jwtx.NewRefreshClaims(u.ID, s.Issuer, s.RefreshTTL, now)
	refresh, err := s.RefreshSigner.Sign(refreshClaims)
	if err != nil {
		return domain.SessionPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return domain.SessionPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

// Refresh validates a refresh token and mints a new access token for role.
// The refresh token itself is left untouched and stays valid until it
// expires. Returns ErrInvalidSession for a missing, forged or expired token.
func (s *SessionIssuer) Refresh(ctx context.Context, refreshToken, role string) (string, time.Time, error) {
	userID, err := s.ParseRefresh(ctx, refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.mintAccess(userID, role, s.now())
}

// ParseRefresh returns the user id carried by a valid refresh token.
func (s *SessionIssuer) ParseRefresh(ctx context.Context, refreshToken string) (int64, error) {
	if refreshToken == "" {
		return 0, ErrInvalidSession
	}
	claims, err := s.RefreshVerifier.Verify(refreshToken)
	if err != nil {
		slogx.FromContext(ctx).Info("refresh token rejected", slog.String("reason", err.Error()))
		return 0, ErrInvalidSession
	}
	return claims.UserID, nil
}

// ParseAccess returns the claims of a valid access token or ErrInvalidSession.
func (s *SessionIssuer) ParseAccess(accessToken string) (jwtx.Claims, error) {
	if accessToken == "" {
		return jwtx.Claims{}, ErrInvalidSession
	}
	claims, err := s.AccessVerifier.Verify(accessToken)
	if err != nil {
		return jwtx.Claims{}, ErrInvalidSession
	}
	return claims, nil
}

func (s *SessionIssuer) mintAccess(userID int64, role string, now time.Time) (string, time.Time, error) {
	claims := jwtx.NewAccessClaims(userID, role, s.Issuer, s.AccessTTL, now)
	token, err := s.AccessSigner.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}
