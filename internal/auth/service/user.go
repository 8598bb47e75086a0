package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/internal/auth/store"
)

// ProfileInput is a partial profile update, omitted fields are kept.
type ProfileInput struct {
	Email       *string `json:"email"        validate:"omitempty,email,max=255"`
	Name        *string `json:"name"         validate:"omitempty,min=1,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
}

type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID int64) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile applies the supplied fields and returns the updated user.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (domain.User, error) {
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := Validate(in); err != nil {
		return domain.User{}, err
	}

	upd := domain.ProfileUpdate{PhoneNumber: in.PhoneNumber}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		upd.Email = &email
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.User{}, newValidationError("name", "name debe tener al menos 1 carácter de longitud")
		}
		upd.Name = &name
	}
	if upd.IsEmpty() {
		return domain.User{}, newValidationError("body", "se requiere al menos uno de email, name o phone_number")
	}

	if upd.Email != nil {
		existing, err := s.Store.Users().GetUserByEmail(ctx, *upd.Email)
		switch {
		case err == nil && existing.ID != userID:
			return domain.User{}, ErrDuplicateEmail
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return domain.User{}, fmt.Errorf("failed to check email: %w", err)
		}
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, upd); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.GetUserByID(ctx, userID)
}
