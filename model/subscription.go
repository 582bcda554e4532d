package model

import (
	"time"
)

// Subscription is a user's opt-in to update notifications for a course.
// The composite unique index is what resolves concurrent toggle races:
// the request losing the race gets a duplicate-key error, surfaced as 409.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscriptions_user_course" json:"user_id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_subscriptions_user_course" json:"course_id"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for Subscription
func (Subscription) TableName() string {
	return "subscriptions"
}
