package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/internal/auth/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.NewUser) (int64, error) {
	id, err := r.q.CreateUser(ctx, gen.CreateUserParams{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		PhoneNumber:  mapOptionalString(u.PhoneNumber),
	})
	if err != nil {
		return 0, mapConstraint(err)
	}
	return id, nil
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID int64, upd domain.ProfileUpdate) error {
	n, err := r.q.UpdateUserProfile(ctx, gen.UpdateUserProfileParams{
		Email:       mapOptionalString(upd.Email),
		Name:        mapOptionalString(upd.Name),
		PhoneNumber: mapOptionalString(upd.PhoneNumber),
		UserID:      userID,
	})
	return mapAffected(n, mapConstraint(err))
}

func (r *usersRepo) SetTwoFactorSecret(ctx context.Context, userID int64, secret string) error {
	return mapAffected(r.q.SetUserTwoFactorSecret(ctx, gen.SetUserTwoFactorSecretParams{
		TwoFactorSecret: mapOptionalString(&secret),
		UserID:          userID,
	}))
}

func (r *usersRepo) EnableTwoFactor(ctx context.Context, userID int64, backupCodes []string) error {
	encoded, err := encodeBackupCodes(backupCodes)
	if err != nil {
		return err
	}
	return mapAffected(r.q.EnableUserTwoFactor(ctx, gen.EnableUserTwoFactorParams{
		BackupCodes: encoded,
		UserID:      userID,
	}))
}

func (r *usersRepo) ReplaceBackupCodes(ctx context.Context, userID int64, backupCodes []string) error {
	encoded, err := encodeBackupCodes(backupCodes)
	if err != nil {
		return err
	}
	return mapAffected(r.q.UpdateUserBackupCodes(ctx, gen.UpdateUserBackupCodesParams{
		BackupCodes: encoded,
		UserID:      userID,
	}))
}

func (r *usersRepo) DisableTwoFactor(ctx context.Context, userID int64) error {
	return mapAffected(r.q.DisableUserTwoFactor(ctx, userID))
}

func (r *usersRepo) GetTwoFactorState(ctx context.Context, userID int64) (domain.TwoFactorState, error) {
	row, err := r.q.GetUserTwoFactorState(ctx, userID)
	if err != nil {
		return domain.TwoFactorState{}, mapNotFound(err)
	}
	return mapTwoFactor(row.TwoFactorEnabled, row.TwoFactorSecret, row.BackupCodes), nil
}

func (r *usersRepo) ClearAbandonedTwoFactorSecrets(ctx context.Context, before time.Time) (int64, error) {
	return r.q.ClearAbandonedTwoFactorSecrets(ctx, before.UTC().Format(sqliteTimeLayout))
}

func (r *usersRepo) ConsumeBackupCode(ctx context.Context, userID int64, code string) (bool, error) {
	state, err := r.GetTwoFactorState(ctx, userID)
	if err != nil {
		return false, err
	}

	idx := -1
	for i, c := range state.BackupCodes {
		if c == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	remaining := make([]string, 0, len(state.BackupCodes)-1)
	remaining = append(remaining, state.BackupCodes[:idx]...)
	remaining = append(remaining, state.BackupCodes[idx+1:]...)

	if err := r.ReplaceBackupCodes(ctx, userID, remaining); err != nil {
		return false, err
	}
	return true, nil
}
