package model

import (
	"time"
)

// Course is a unit of study material owned by the user who created it.
// The owner reference survives as NULL when the owner account is removed.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	PreviewURL  string    `gorm:"type:varchar(500)" json:"preview_url,omitempty"`
	OwnerID     *uint     `gorm:"index" json:"owner_id,omitempty"`

	// Relationships
	Owner         *User          `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	Lessons       []Lesson       `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Subscriptions []Subscription `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Payments      []Payment      `gorm:"foreignKey:PaidCourseID;constraint:OnDelete:SET NULL" json:"-"`
}

// Lesson belongs to a course and is removed together with it.
type Lesson struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	PreviewURL  string    `gorm:"type:varchar(500)" json:"preview_url,omitempty"`
	VideoURL    string    `gorm:"type:varchar(500)" json:"video_url"`
	OwnerID     *uint     `gorm:"index" json:"owner_id,omitempty"`

	// Relationships
	Course   Course    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Owner    *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	Payments []Payment `gorm:"foreignKey:PaidLessonID;constraint:OnDelete:SET NULL" json:"-"`
}
