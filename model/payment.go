package model

import (
	"time"
)

// PaymentMethod is how a payment was (or will be) settled.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodStripe   PaymentMethod = "stripe"
)

// PaymentStatus is the settlement state of a payment.
// pending is the only non-terminal state.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment records a user paying for exactly one course or one lesson.
// Stripe identifiers are set when the payment was created through a
// checkout session.
type Payment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	PaymentDate time.Time     `gorm:"autoCreateTime" json:"payment_date"`
	Amount      float64       `gorm:"not null" json:"amount"`
	Method      PaymentMethod `gorm:"type:varchar(10);not null" json:"payment_method"`
	Status      PaymentStatus `gorm:"type:varchar(10);default:'pending'" json:"payment_status"`

	PaidCourseID *uint `gorm:"index" json:"paid_course_id,omitempty"`
	PaidLessonID *uint `gorm:"index" json:"paid_lesson_id,omitempty"`

	StripeProductID  string `gorm:"type:varchar(255)" json:"-"`
	StripePriceID    string `gorm:"type:varchar(255)" json:"-"`
	StripeSessionID  string `gorm:"type:varchar(255);index" json:"stripe_session_id,omitempty"`
	StripePaymentURL string `gorm:"type:varchar(500)" json:"stripe_payment_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User       User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PaidCourse *Course `gorm:"foreignKey:PaidCourseID;constraint:OnDelete:SET NULL" json:"paid_course,omitempty"`
	PaidLesson *Lesson `gorm:"foreignKey:PaidLessonID;constraint:OnDelete:SET NULL" json:"paid_lesson,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// IsTerminal reports whether the status accepts no further transitions.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// CanTransition reports whether moving from the payment's current status
// to the target status is allowed. Only pending->paid and pending->failed
// are valid moves.
func (p *Payment) CanTransition(to PaymentStatus) bool {
	if p.Status != PaymentStatusPending {
		return false
	}
	return to == PaymentStatusPaid || to == PaymentStatusFailed
}
