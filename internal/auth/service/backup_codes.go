package service

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/lostfound/pkg/cryptox"
)

const (
	BackupCodeCount = 10 // codes per generation
	backupCodeBytes = 4  // 8 uppercase hex chars
)

// GenerateBackupCodes returns a fresh batch of BackupCodeCount recovery
// codes. Batches are not deduplicated, 32 random bits per code make a
// collision within a batch negligible.
func GenerateBackupCodes() ([]string, error) {
	codes := make([]string, BackupCodeCount)
	for i := range BackupCodeCount {
		code, err := cryptox.GenerateHexCode(backupCodeBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		codes[i] = code
	}
	return codes, nil
}

// normalizeCode trims the submitted code and uppercases it so a backup code
// typed in lowercase still matches. TOTP codes are digits and unaffected.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
