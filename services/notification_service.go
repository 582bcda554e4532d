package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/utils/cache"
)

// NotifyService fans course update notifications out to subscribers.
type NotifyService struct {
	db       *gorm.DB
	email    *EmailService
	cache    *cache.RedisCache
	cooldown time.Duration
}

// NewNotifyService creates a new notification service
func NewNotifyService(db *gorm.DB, email *EmailService, redisCache *cache.RedisCache, cooldown time.Duration) *NotifyService {
	if cooldown <= 0 {
		cooldown = 4 * time.Hour
	}
	return &NotifyService{
		db:       db,
		email:    email,
		cache:    redisCache,
		cooldown: cooldown,
	}
}

func (n *NotifyService) cooldownKey(courseID uint) string {
	return fmt.Sprintf("notify:cooldown:course:%d", courseID)
}

// NotifyCourseSubscribers emails every active subscriber of a course.
// A per-course cooldown window collapses rapid successive edits into a
// single notification. The returned string describes the outcome for
// job logging.
func (n *NotifyService) NotifyCourseSubscribers(ctx context.Context, courseID uint) (string, error) {
	key := n.cooldownKey(courseID)

	// A cache failure here falls through to sending; the cooldown is an
	// optimization, not a correctness guard.
	if armedAt, err := n.cache.Get(ctx, key); err == nil {
		return fmt.Sprintf("skipped course %d: notification cooldown armed at %s", courseID, armedAt), nil
	} else if err != cache.ErrNotFound {
		log.Printf("[Notify] cooldown lookup failed for course %d: %v", courseID, err)
	}

	var course model.Course
	if err := n.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Course deleted between enqueue and processing.
			return fmt.Sprintf("skipped course %d: no longer exists", courseID), nil
		}
		return "", err
	}

	var emails []string
	err := n.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Joins("JOIN users ON users.id = subscriptions.user_id").
		Where("subscriptions.course_id = ? AND users.is_active = ?", courseID, true).
		Pluck("users.email", &emails).Error
	if err != nil {
		return "", err
	}

	if len(emails) == 0 {
		return fmt.Sprintf("course %d has no active subscribers", courseID), nil
	}

	// Arm the cooldown before sending so a crash mid-send cannot cause
	// a duplicate blast on retry.
	if err := n.cache.Set(ctx, key, time.Now().Format(time.RFC3339), n.cooldown); err != nil {
		return "", err
	}

	sent, sendErr := n.email.SendCourseUpdateEmail(emails, course.Title)
	if sendErr != nil && sent == 0 {
		return "", sendErr
	}

	return fmt.Sprintf("notified %d of %d subscribers of course %d", sent, len(emails), courseID), nil
}
