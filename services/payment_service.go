package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/model"
)

// ErrProviderFailure marks errors coming from the payment gateway so
// handlers can map them to a 502 instead of a generic 500.
var ErrProviderFailure = errors.New("payment provider failure")

// ErrInvalidPaymentTarget is returned when a checkout names neither a
// course nor a lesson, or both.
var ErrInvalidPaymentTarget = errors.New("payment must reference exactly one course or lesson")

// PaymentService drives the payment lifecycle: checkout creation and
// status polling against the provider.
type PaymentService struct {
	db       *gorm.DB
	provider PaymentProvider
	baseURL  string
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, provider PaymentProvider, baseURL string) *PaymentService {
	return &PaymentService{
		db:       db,
		provider: provider,
		baseURL:  baseURL,
	}
}

// CreateCheckoutInput describes a checkout request after handler validation.
type CreateCheckoutInput struct {
	CourseID *uint
	LessonID *uint
	Amount   float64
}

// CreateCheckout creates a pending payment backed by a hosted checkout
// session. Nothing is persisted when the provider call fails, so a
// retried request starts clean.
func (s *PaymentService) CreateCheckout(ctx context.Context, user *model.User, input CreateCheckoutInput) (*model.Payment, error) {
	if (input.CourseID == nil) == (input.LessonID == nil) {
		return nil, ErrInvalidPaymentTarget
	}

	var productName string
	if input.CourseID != nil {
		var course model.Course
		if err := s.db.WithContext(ctx).First(&course, *input.CourseID).Error; err != nil {
			return nil, err
		}
		productName = course.Title
	} else {
		var lesson model.Lesson
		if err := s.db.WithContext(ctx).First(&lesson, *input.LessonID).Error; err != nil {
			return nil, err
		}
		productName = lesson.Title
	}

	result, err := s.provider.CreateCheckout(ctx, CheckoutParams{
		ProductName: productName,
		Amount:      input.Amount,
		SuccessURL:  fmt.Sprintf("%s/api/v1/payments/success", s.baseURL),
		CancelURL:   fmt.Sprintf("%s/api/v1/payments/cancel", s.baseURL),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	payment := &model.Payment{
		UserID:           user.ID,
		Amount:           input.Amount,
		Method:           model.PaymentMethodStripe,
		Status:           model.PaymentStatusPending,
		PaidCourseID:     input.CourseID,
		PaidLessonID:     input.LessonID,
		StripeProductID:  result.ProductID,
		StripePriceID:    result.PriceID,
		StripeSessionID:  result.SessionID,
		StripePaymentURL: result.PaymentURL,
	}

	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}

	return payment, nil
}

// CheckStatus refreshes a payment's status from the provider. A payment
// that is already paid is returned as-is without a provider round trip.
func (s *PaymentService) CheckStatus(ctx context.Context, paymentID uint) (*model.Payment, error) {
	var payment model.Payment
	if err := s.db.WithContext(ctx).First(&payment, paymentID).Error; err != nil {
		return nil, err
	}

	if payment.Status == model.PaymentStatusPaid {
		return &payment, nil
	}

	// Cash and transfer payments have no session to poll.
	if payment.Method != model.PaymentMethodStripe || payment.StripeSessionID == "" {
		return &payment, nil
	}

	paid, err := s.provider.SessionPaid(ctx, payment.StripeSessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	if paid && payment.CanTransition(model.PaymentStatusPaid) {
		if err := s.db.WithContext(ctx).Model(&payment).
			Update("status", model.PaymentStatusPaid).Error; err != nil {
			return nil, err
		}
		payment.Status = model.PaymentStatusPaid
	}

	return &payment, nil
}
