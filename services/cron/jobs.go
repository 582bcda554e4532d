package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/alexsergeyev/skillforge/model"
)

// DeactivateInactiveUsers blocks accounts whose last login is older than
// the inactivity cutoff. Users who never logged in are left alone, as
// are staff and superuser accounts. Already-blocked users are not
// touched, so running the sweep twice changes nothing.
func (m *CronManager) DeactivateInactiveUsers() {
	jobName := "deactivate_inactive_users"

	cutoff := time.Now().Add(-m.inactivityCutoff)

	result := m.db.Model(&model.User{}).
		Where("is_active = ?", true).
		Where("is_staff = ? AND is_superuser = ?", false, false).
		Where("last_login IS NOT NULL AND last_login < ?", cutoff).
		Update("is_active", false)

	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to deactivate users: %w", result.Error))
		return
	}

	summary := fmt.Sprintf("Deactivated %d users inactive since %s", result.RowsAffected, cutoff.Format(time.RFC3339))

	if result.RowsAffected > 0 && m.notifier != nil && m.notifier.IsConfigured() && m.operatorEmail != "" {
		if err := m.notifier.SendOperatorSummary(m.operatorEmail, "Inactivity sweep report", summary); err != nil {
			log.Printf("[CRON] Failed to send sweep summary to operator: %v", err)
		}
	}

	m.logJobComplete(jobName, summary)
}

// CleanupExpiredBlacklistTokens removes blacklist entries whose tokens
// have expired on their own.
func (m *CronManager) CleanupExpiredBlacklistTokens() {
	jobName := "cleanup_expired_blacklist_tokens"

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to cleanup blacklist: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired blacklist entries", removed))
}
