package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Repositories hang off it as methods so a Tx-scoped Store
// hands out Tx-scoped repositories and nobody opens a transaction inside a
// transaction by accident.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the credential store. Every call reads or writes the backing
// database, there is no caching layer.
type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user and returns its id. Returns
	// ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, u domain.NewUser) (int64, error)

	// UpdateProfile applies the non-nil fields of upd and bumps updated_at.
	// Returns ErrAlreadyExists if the new email is taken.
	UpdateProfile(ctx context.Context, userID int64, upd domain.ProfileUpdate) error

	// SetTwoFactorSecret stores a pending TOTP secret without enabling 2FA.
	SetTwoFactorSecret(ctx context.Context, userID int64, secret string) error

	// EnableTwoFactor sets two_factor_enabled and replaces the backup code
	// list in a single statement.
	EnableTwoFactor(ctx context.Context, userID int64, backupCodes []string) error

	// ReplaceBackupCodes overwrites the backup code list, leaving the rest of
	// the 2FA state alone.
	ReplaceBackupCodes(ctx context.Context, userID int64, backupCodes []string) error

	// DisableTwoFactor clears the enabled flag, the secret and the backup
	// codes in a single statement.
	DisableTwoFactor(ctx context.Context, userID int64) error

	// GetTwoFactorState returns the 2FA fields for a user or ErrNotFound.
	// Stored backup codes that are not a JSON list decode as no codes.
	GetTwoFactorState(ctx context.Context, userID int64) (domain.TwoFactorState, error)

	// ClearAbandonedTwoFactorSecrets drops pending secrets of users who
	// started setup before the cutoff and never enabled 2FA. Returns the
	// number of users touched.
	ClearAbandonedTwoFactorSecrets(ctx context.Context, before time.Time) (int64, error)

	// ConsumeBackupCode removes exactly one matching code and reports whether
	// one was found. Call it inside WithTx so the read and write are atomic.
	ConsumeBackupCode(ctx context.Context, userID int64, code string) (bool, error)
}
