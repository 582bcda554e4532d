package course

import (
	"bytes"
	"encoding/json"
	"fmt"
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
		&model.Course{}, &model.Lesson{},
	))

	t.Cleanup(func() {
		db.Exec("DELETE FROM lessons")
		db.Exec("DELETE FROM courses")
		db.Exec("DELETE FROM user_groups")
		db.Exec("DELETE FROM users")
	})

	return db
}

// setupApp builds a minimal fiber app with the course routes behind a
// stub auth middleware that injects the given user. Notifications stay
// out of scope here, so the handler runs without a job queue.
func setupApp(db *gorm.DB, user *model.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", user)
		c.Locals("user_id", user.ID)
		return c.Next()
	})

	handler := NewCourseHandler(db, nil)
	app.Post("/courses", handler.CreateCourse)
	app.Patch("/courses/:id", handler.UpdateCourse)
	return app
}

func createAuthor(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		Email:        email,
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func postCourse(t *testing.T, app *fiber.App, title string) *http.Response {
	t.Helper()

	body, err := json.Marshal(CreateCourseRequest{
		Title:       title,
		Description: "A description long enough to satisfy the minimum length rule",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/courses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func patchCourseTitle(t *testing.T, app *fiber.App, courseID uint, title string) *http.Response {
	t.Helper()

	body, err := json.Marshal(UpdateCourseRequest{Title: &title})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/courses/%d", courseID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCreateCourseRejectsCaseVariantTitle(t *testing.T) {
	db := setupTestDB(t)

	author := createAuthor(t, db, "author@example.com")
	app := setupApp(db, author)

	resp := postCourse(t, app, "Modern API Design")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// The same title in different casing is still the same title.
	resp = postCourse(t, app, "MODERN API DESIGN")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postCourse(t, app, "modern api design")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&model.Course{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateCourseRejectsCaseVariantOfAnotherTitle(t *testing.T) {
	db := setupTestDB(t)

	author := createAuthor(t, db, "writer@example.com")
	app := setupApp(db, author)

	first := &model.Course{
		Title:       "Practical PostgreSQL",
		Description: "A description long enough to satisfy the minimum length rule",
		OwnerID:     &author.ID,
	}
	require.NoError(t, db.Create(first).Error)

	second := &model.Course{
		Title:       "Redis beyond caching",
		Description: "A description long enough to satisfy the minimum length rule",
		OwnerID:     &author.ID,
	}
	require.NoError(t, db.Create(second).Error)

	resp := patchCourseTitle(t, app, second.ID, "PRACTICAL POSTGRESQL")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var untouched model.Course
	require.NoError(t, db.First(&untouched, second.ID).Error)
	assert.Equal(t, "Redis beyond caching", untouched.Title)
}

func TestUpdateCourseAllowsRecasingOwnTitle(t *testing.T) {
	db := setupTestDB(t)

	author := createAuthor(t, db, "owner@example.com")
	app := setupApp(db, author)

	course := &model.Course{
		Title:       "Concurrency in Go",
		Description: "A description long enough to satisfy the minimum length rule",
		OwnerID:     &author.ID,
	}
	require.NoError(t, db.Create(course).Error)

	resp := patchCourseTitle(t, app, course.ID, "Concurrency in GO")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated model.Course
	require.NoError(t, db.First(&updated, course.ID).Error)
	assert.Equal(t, "Concurrency in GO", updated.Title)
}
