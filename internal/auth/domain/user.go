package domain

import "time"

// Role values stored in users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string // bcrypt encoded
	Name         string
	PhoneNumber  *string
	Role         string
	IsConfirmed  bool
	IsActive     bool
	TwoFactor    TwoFactorState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser carries the fields written on registration. The password must
// already be hashed by the caller.
type NewUser struct {
	Email        string
	PasswordHash string
	Name         string
	PhoneNumber  *string
}

// ProfileUpdate is a partial update, nil fields are left untouched.
type ProfileUpdate struct {
	Email       *string
	Name        *string
	PhoneNumber *string
}

// IsEmpty reports whether the update would change nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Email == nil && p.Name == nil && p.PhoneNumber == nil
}
