package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/internal/auth/store"
	"github.com/aussiebroadwan/lostfound/internal/auth/store/drivers/sqlite/gen"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteTimeLayout matches what CURRENT_TIMESTAMP writes.
const sqliteTimeLayout = "2006-01-02 15:04:05"

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection: each ":memory:" connection is its own database, and
	// SQLite serialises writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
//
// The pool holds a single connection, so fn must only use the tx it is
// handed. Calling back into s blocks until the transaction ends.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users { return &usersRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns a UNIQUE violation into store.ErrAlreadyExists.
func mapConstraint(err error) error {
	var serr *moderncsqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists
		}
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

// mapAffected returns store.ErrNotFound when an UPDATE touched nothing.
func mapAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

// encodeBackupCodes stores an empty list as "[]" rather than NULL so an
// enabled account with every code spent still reads back as a list.
func encodeBackupCodes(codes []string) (sql.NullString, error) {
	if codes == nil {
		codes = []string{}
	}
	raw, err := json.Marshal(codes)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// decodeBackupCodes is lenient: NULL, non-list or malformed values decode as
// no codes.
func decodeBackupCodes(ns sql.NullString) []string {
	if !ns.Valid {
		return nil
	}
	raw := strings.TrimSpace(ns.String)
	if !strings.HasPrefix(raw, "[") {
		return nil
	}
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		slog.Warn("sqlite: ignoring malformed backup_codes payload", "error", err)
		return nil
	}
	return codes
}

func mapTwoFactor(enabled bool, secret, codes sql.NullString) domain.TwoFactorState {
	return domain.TwoFactorState{
		Enabled:     enabled,
		Secret:      mapNullStringPtr(secret),
		BackupCodes: decodeBackupCodes(codes),
	}
}

func mapUser(row gen.User) domain.User {
	return domain.User{
		ID:           row.UserID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Name:         row.Name,
		PhoneNumber:  mapNullStringPtr(row.PhoneNumber),
		Role:         row.Role,
		IsConfirmed:  row.IsConfirmed,
		IsActive:     row.IsActive,
		TwoFactor:    mapTwoFactor(row.TwoFactorEnabled, row.TwoFactorSecret, row.BackupCodes),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
