package cron

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alexsergeyev/skillforge/model"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER_NAME", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("TEST_DB_NAME", "skillforge_test"),
		envOr("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "test database must be reachable")

	require.NoError(t, db.AutoMigrate(
		&model.Group{}, &model.User{},
		&model.JWTTokenBlacklist{}, &model.CronJobLog{},
	))

	t.Cleanup(func() {
		db.Exec("DELETE FROM cron_job_logs")
		db.Exec("DELETE FROM jwt_token_blacklist")
		db.Exec("DELETE FROM user_groups")
		db.Exec("DELETE FROM users")
	})

	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, lastLogin *time.Time, active, staff bool) *model.User {
	t.Helper()

	user := &model.User{
		Email:        email,
		PasswordHash: "x",
		IsActive:     active,
		IsStaff:      staff,
		LastLogin:    lastLogin,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestDeactivateInactiveUsers(t *testing.T) {
	db := setupTestDB(t)
	manager := NewCronManager(db, 30*24*time.Hour)

	old := time.Now().Add(-45 * 24 * time.Hour)
	recent := time.Now().Add(-2 * 24 * time.Hour)

	stale := createUser(t, db, "stale@example.com", &old, true, false)
	fresh := createUser(t, db, "fresh@example.com", &recent, true, false)
	never := createUser(t, db, "never@example.com", nil, true, false)
	admin := createUser(t, db, "admin@example.com", &old, true, true)
	blocked := createUser(t, db, "blocked@example.com", &old, false, false)

	manager.logJobStart("deactivate_inactive_users")
	manager.DeactivateInactiveUsers()

	assertActive := func(id uint, want bool, label string) {
		var u model.User
		require.NoError(t, db.First(&u, id).Error)
		assert.Equal(t, want, u.IsActive, label)
	}

	assertActive(stale.ID, false, "stale user must be deactivated")
	assertActive(fresh.ID, true, "recently active user must stay active")
	assertActive(never.ID, true, "user who never logged in must stay active")
	assertActive(admin.ID, true, "staff accounts are exempt from the sweep")
	assertActive(blocked.ID, false, "already blocked user stays blocked")
}

func TestDeactivateInactiveUsersIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	manager := NewCronManager(db, 30*24*time.Hour)

	old := time.Now().Add(-60 * 24 * time.Hour)
	createUser(t, db, "idempotent@example.com", &old, true, false)

	manager.logJobStart("deactivate_inactive_users")
	manager.DeactivateInactiveUsers()

	var afterFirst int64
	require.NoError(t, db.Model(&model.User{}).Where("is_active = ?", false).Count(&afterFirst).Error)

	manager.logJobStart("deactivate_inactive_users")
	manager.DeactivateInactiveUsers()

	var afterSecond int64
	require.NoError(t, db.Model(&model.User{}).Where("is_active = ?", false).Count(&afterSecond).Error)

	assert.Equal(t, afterFirst, afterSecond, "a second sweep must not change anything")

	// Both runs leave completed job log entries behind.
	var logs []model.CronJobLog
	require.NoError(t, db.Where("job_name = ?", "deactivate_inactive_users").Find(&logs).Error)
	assert.Len(t, logs, 2)
	for _, entry := range logs {
		assert.Equal(t, "completed", entry.Status)
	}
}

func TestCleanupExpiredBlacklistTokens(t *testing.T) {
	db := setupTestDB(t)
	manager := NewCronManager(db, 30*24*time.Hour)

	user := createUser(t, db, "tokens@example.com", nil, true, false)

	expired := &model.JWTTokenBlacklist{
		Token:     "expired-jti",
		UserID:    user.ID,
		Reason:    "logout",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	live := &model.JWTTokenBlacklist{
		Token:     "live-jti",
		UserID:    user.ID,
		Reason:    "logout",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(expired).Error)
	require.NoError(t, db.Create(live).Error)

	manager.logJobStart("cleanup_expired_blacklist_tokens")
	manager.CleanupExpiredBlacklistTokens()

	var remaining []model.JWTTokenBlacklist
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "live-jti", remaining[0].Token)
}
