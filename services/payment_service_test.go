package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alexsergeyev/skillforge/model"
)

// fakeProvider counts calls so tests can assert the service short-circuits.
type fakeProvider struct {
	createCalls  int
	sessionCalls int
	failCreate   bool
	sessionPaid  bool
}

func (f *fakeProvider) CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutResult, error) {
	f.createCalls++
	if f.failCreate {
		return nil, errors.New("gateway timeout")
	}
	return &CheckoutResult{
		ProductID:  "prod_test",
		PriceID:    "price_test",
		SessionID:  "cs_test",
		PaymentURL: "https://checkout.example/cs_test",
	}, nil
}

func (f *fakeProvider) SessionPaid(ctx context.Context, sessionID string) (bool, error) {
	f.sessionCalls++
	return f.sessionPaid, nil
}

func TestCreateCheckoutRejectsAmbiguousTarget(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewPaymentService(nil, provider, "http://localhost:8080")

	courseID := uint(1)
	lessonID := uint(2)

	tests := []struct {
		name  string
		input CreateCheckoutInput
	}{
		{"neither course nor lesson", CreateCheckoutInput{Amount: 10}},
		{"both course and lesson", CreateCheckoutInput{CourseID: &courseID, LessonID: &lessonID, Amount: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCheckout(context.Background(), &model.User{}, tt.input)
			assert.ErrorIs(t, err, ErrInvalidPaymentTarget)
			assert.Zero(t, provider.createCalls, "provider must not be called for invalid targets")
		})
	}
}

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
		&model.Course{}, &model.Lesson{}, &model.Subscription{},
		&model.Payment{},
	))

	t.Cleanup(func() {
		db.Exec("DELETE FROM payments")
		db.Exec("DELETE FROM subscriptions")
		db.Exec("DELETE FROM lessons")
		db.Exec("DELETE FROM courses")
		db.Exec("DELETE FROM user_groups")
		db.Exec("DELETE FROM users")
	})

	return db
}

func createTestUserAndCourse(t *testing.T, db *gorm.DB) (*model.User, *model.Course) {
	t.Helper()

	user := &model.User{Email: fmt.Sprintf("buyer-%d@example.com", os.Getpid()), PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)

	course := &model.Course{
		Title:       "Distributed Systems Primer",
		Description: "An introduction to consensus, replication and failure models.",
		OwnerID:     &user.ID,
	}
	require.NoError(t, db.Create(course).Error)

	return user, course
}

func TestCreateCheckoutPersistsNothingOnProviderFailure(t *testing.T) {
	db := setupTestDB(t)
	user, course := createTestUserAndCourse(t, db)

	provider := &fakeProvider{failCreate: true}
	svc := NewPaymentService(db, provider, "http://localhost:8080")

	_, err := svc.CreateCheckout(context.Background(), user, CreateCheckoutInput{
		CourseID: &course.ID,
		Amount:   49.99,
	})
	require.ErrorIs(t, err, ErrProviderFailure)

	var count int64
	require.NoError(t, db.Model(&model.Payment{}).Count(&count).Error)
	assert.Zero(t, count, "failed checkouts must not leave payment rows behind")
}

func TestCreateCheckoutPersistsProviderIdentifiers(t *testing.T) {
	db := setupTestDB(t)
	user, course := createTestUserAndCourse(t, db)

	provider := &fakeProvider{}
	svc := NewPaymentService(db, provider, "http://localhost:8080")

	payment, err := svc.CreateCheckout(context.Background(), user, CreateCheckoutInput{
		CourseID: &course.ID,
		Amount:   49.99,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusPending, payment.Status)
	assert.Equal(t, model.PaymentMethodStripe, payment.Method)
	assert.Equal(t, "cs_test", payment.StripeSessionID)
	assert.Equal(t, "https://checkout.example/cs_test", payment.StripePaymentURL)
	assert.Equal(t, 1, provider.createCalls)
}

func TestCheckStatusSkipsProviderWhenPaid(t *testing.T) {
	db := setupTestDB(t)
	user, course := createTestUserAndCourse(t, db)

	payment := &model.Payment{
		UserID:          user.ID,
		Amount:          49.99,
		Method:          model.PaymentMethodStripe,
		Status:          model.PaymentStatusPaid,
		PaidCourseID:    &course.ID,
		StripeSessionID: "cs_done",
	}
	require.NoError(t, db.Create(payment).Error)

	provider := &fakeProvider{sessionPaid: true}
	svc := NewPaymentService(db, provider, "http://localhost:8080")

	got, err := svc.CheckStatus(context.Background(), payment.ID)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusPaid, got.Status)
	assert.Zero(t, provider.sessionCalls, "paid payments must not trigger a provider round trip")
}

func TestCheckStatusTransitionsPendingToPaid(t *testing.T) {
	db := setupTestDB(t)
	user, course := createTestUserAndCourse(t, db)

	payment := &model.Payment{
		UserID:          user.ID,
		Amount:          49.99,
		Method:          model.PaymentMethodStripe,
		Status:          model.PaymentStatusPending,
		PaidCourseID:    &course.ID,
		StripeSessionID: "cs_pending",
	}
	require.NoError(t, db.Create(payment).Error)

	provider := &fakeProvider{sessionPaid: true}
	svc := NewPaymentService(db, provider, "http://localhost:8080")

	got, err := svc.CheckStatus(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, got.Status)
	assert.Equal(t, 1, provider.sessionCalls)

	var stored model.Payment
	require.NoError(t, db.First(&stored, payment.ID).Error)
	assert.Equal(t, model.PaymentStatusPaid, stored.Status)
}

func TestCheckStatusLeavesUnpaidSessionPending(t *testing.T) {
	db := setupTestDB(t)
	user, course := createTestUserAndCourse(t, db)

	payment := &model.Payment{
		UserID:          user.ID,
		Amount:          49.99,
		Method:          model.PaymentMethodStripe,
		Status:          model.PaymentStatusPending,
		PaidCourseID:    &course.ID,
		StripeSessionID: "cs_open",
	}
	require.NoError(t, db.Create(payment).Error)

	provider := &fakeProvider{sessionPaid: false}
	svc := NewPaymentService(db, provider, "http://localhost:8080")

	got, err := svc.CheckStatus(context.Background(), payment.ID)
	require.NoError(t, err)

	// An unpaid session is not a failure; the payment stays pending.
	assert.Equal(t, model.PaymentStatusPending, got.Status)
}
