package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/utils/auth"
)

// OperatorNotifier delivers operational notices to a human operator.
type OperatorNotifier interface {
	IsConfigured() bool
	SendOperatorSummary(to, subject, text string) error
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron             *cron.Cron
	db               *gorm.DB
	blacklist        *auth.BlacklistService
	inactivityCutoff time.Duration
	notifier         OperatorNotifier
	operatorEmail    string
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, inactivityCutoff time.Duration) *CronManager {
	// Seconds precision keeps schedules explicit.
	c := cron.New(cron.WithSeconds())

	if inactivityCutoff <= 0 {
		inactivityCutoff = 30 * 24 * time.Hour
	}

	return &CronManager{
		cron:             c,
		db:               db,
		blacklist:        auth.NewBlacklistService(db),
		inactivityCutoff: inactivityCutoff,
	}
}

// WithOperatorNotifier enables the sweep summary email to the given
// operator address.
func (m *CronManager) WithOperatorNotifier(n OperatorNotifier, operatorEmail string) *CronManager {
	m.notifier = n
	m.operatorEmail = operatorEmail
	return m
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Daily at midnight: deactivate users who have not logged in for
	// the configured inactivity window.
	_, err := m.cron.AddFunc("0 0 0 * * *", func() {
		m.logJobStart("deactivate_inactive_users")
		m.DeactivateInactiveUsers()
	})
	if err != nil {
		return err
	}

	// Every hour: drop expired entries from the token blacklist.
	_, err = m.cron.AddFunc("0 0 * * * *", func() {
		m.logJobStart("cleanup_expired_blacklist_tokens")
		m.CleanupExpiredBlacklistTokens()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	cronLog := model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: time.Now(),
		Metadata:  datatypes.JSON("{}"),
	}
	m.db.Create(&cronLog)
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(jobName string, message string) {
	log.Printf("[CRON] Completed job: %s - %s", jobName, message)

	m.db.Model(&model.CronJobLog{}).
		Where("job_name = ? AND status = ?", jobName, "running").
		Order("started_at DESC").
		Limit(1).
		Updates(map[string]interface{}{
			"status":       "completed",
			"completed_at": time.Now(),
			"message":      message,
		})
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(jobName string, err error) {
	log.Printf("[CRON] Error in job: %s - %v", jobName, err)

	m.db.Model(&model.CronJobLog{}).
		Where("job_name = ? AND status = ?", jobName, "running").
		Order("started_at DESC").
		Limit(1).
		Updates(map[string]interface{}{
			"status":       "failed",
			"completed_at": time.Now(),
			"error_msg":    err.Error(),
		})
}
