package subscription

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
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
		&model.Course{}, &model.Lesson{}, &model.Subscription{},
	))

	t.Cleanup(func() {
		db.Exec("DELETE FROM subscriptions")
		db.Exec("DELETE FROM lessons")
		db.Exec("DELETE FROM courses")
		db.Exec("DELETE FROM user_groups")
		db.Exec("DELETE FROM users")
	})

	return db
}

// setupApp builds a minimal fiber app with the subscription routes
// behind a stub auth middleware that injects the given user.
func setupApp(db *gorm.DB, user *model.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		c.Locals("user_id", user.ID)
		return c.Next()
	})

	handler := NewSubscriptionHandler(db)
	app.Post("/subscriptions", handler.Toggle)
	app.Get("/subscriptions", handler.ListMine)
	return app
}

func toggleCourse(t *testing.T, app *fiber.App, courseID uint) (*http.Response, map[string]interface{}) {
	t.Helper()

	body, err := json.Marshal(ToggleRequest{CourseID: courseID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp, parsed
}

func createSubscriber(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		Email:        email,
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCourse(t *testing.T, db *gorm.DB, owner *model.User, title string) *model.Course {
	t.Helper()

	course := &model.Course{
		Title:       title,
		Description: "A course long enough to pass the description validator",
		OwnerID:     &owner.ID,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func TestToggleSubscribesAndUnsubscribes(t *testing.T) {
	db := setupTestDB(t)

	owner := createSubscriber(t, db, "owner@example.com")
	subscriber := createSubscriber(t, db, "subscriber@example.com")
	course := createCourse(t, db, owner, "Go for backend engineers")

	app := setupApp(db, subscriber)

	resp, body := toggleCourse(t, app, course.ID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["subscribed"])

	var count int64
	require.NoError(t, db.Model(&model.Subscription{}).
		Where("user_id = ? AND course_id = ?", subscriber.ID, course.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Toggling again removes the row.
	resp, body = toggleCourse(t, app, course.ID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, false, data["subscribed"])

	require.NoError(t, db.Model(&model.Subscription{}).
		Where("user_id = ? AND course_id = ?", subscriber.ID, course.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestToggleUnknownCourseReturns404(t *testing.T) {
	db := setupTestDB(t)

	subscriber := createSubscriber(t, db, "lost@example.com")
	app := setupApp(db, subscriber)

	resp, _ := toggleCourse(t, app, 999999)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleIsScopedPerUser(t *testing.T) {
	db := setupTestDB(t)

	owner := createSubscriber(t, db, "teacher@example.com")
	first := createSubscriber(t, db, "first@example.com")
	second := createSubscriber(t, db, "second@example.com")
	course := createCourse(t, db, owner, "Distributed systems in practice")

	firstApp := setupApp(db, first)
	secondApp := setupApp(db, second)

	resp, _ := toggleCourse(t, firstApp, course.ID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The second user unsubscribing-by-toggle must create their own
	// subscription, not delete the first user's.
	resp, body := toggleCourse(t, secondApp, course.ID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["subscribed"])

	var count int64
	require.NoError(t, db.Model(&model.Subscription{}).
		Where("course_id = ?", course.ID).
		Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestListMineReturnsOnlyOwnSubscriptions(t *testing.T) {
	db := setupTestDB(t)

	owner := createSubscriber(t, db, "author@example.com")
	mine := createSubscriber(t, db, "mine@example.com")
	other := createSubscriber(t, db, "other@example.com")

	courseA := createCourse(t, db, owner, "Practical PostgreSQL")
	courseB := createCourse(t, db, owner, "Redis beyond caching")

	require.NoError(t, db.Create(&model.Subscription{UserID: mine.ID, CourseID: courseA.ID}).Error)
	require.NoError(t, db.Create(&model.Subscription{UserID: other.ID, CourseID: courseB.ID}).Error)

	app := setupApp(db, mine)

	req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed struct {
		Data []model.Subscription `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	require.Len(t, parsed.Data, 1)
	assert.Equal(t, courseA.ID, parsed.Data[0].CourseID)
}
