package lesson

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/services/queue"
	"github.com/alexsergeyev/skillforge/utils/authz"
	"github.com/alexsergeyev/skillforge/utils/middleware"
	"github.com/alexsergeyev/skillforge/utils/response"
	"github.com/alexsergeyev/skillforge/utils/validation"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// LessonHandler handles lesson-related requests
type LessonHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	jobQueue  *queue.Queue
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(db *gorm.DB, jobQueue *queue.Queue) *LessonHandler {
	return &LessonHandler{
		db:        db,
		validator: validation.NewValidator(),
		jobQueue:  jobQueue,
	}
}

// CreateLessonRequest represents the request body for creating a lesson
type CreateLessonRequest struct {
	CourseID    uint   `json:"course_id" validate:"required,min=1"`
	Title       string `json:"title" validate:"required,min=3,max=200,title_chars"`
	Description string `json:"description" validate:"required,min=10,max=1000"`
	PreviewURL  string `json:"preview_url" validate:"omitempty,url,max=500"`
	VideoURL    string `json:"video_url" validate:"required,video_url,max=500"`
}

// UpdateLessonRequest represents the request body for updating a lesson
type UpdateLessonRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200,title_chars"`
	Description *string `json:"description" validate:"omitempty,min=10,max=1000"`
	PreviewURL  *string `json:"preview_url" validate:"omitempty,url,max=500"`
	VideoURL    *string `json:"video_url" validate:"omitempty,video_url,max=500"`
}

// ListLessons handles GET /api/v1/lessons
func (h *LessonHandler) ListLessons(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageSize)))
	courseID := c.Query("course_id", "")

	query := h.db.Model(&model.Lesson{})

	if !authz.SeesAllRows(user) {
		query = query.Where("owner_id = ?", user.ID)
	}

	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count lessons")
	}

	pagination := response.CalculatePagination(page, limit, maxPageSize, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var lessons []model.Lesson
	if err := query.
		Order("created_at DESC").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&lessons).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch lessons")
	}

	return response.Paginated(c, lessons, pagination)
}

// GetLesson handles GET /api/v1/lessons/:id
func (h *LessonHandler) GetLesson(c *fiber.Ctx) error {
	var lesson model.Lesson
	if err := h.db.First(&lesson, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to fetch lesson")
	}

	return response.Success(c, lesson)
}

// CreateLesson handles POST /api/v1/lessons
func (h *LessonHandler) CreateLesson(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	if allowed, err := authz.CanMaterial(user, authz.ActionCreate, nil); err != nil || !allowed {
		return response.Forbidden(c, "Moderators cannot create lessons")
	}

	var req CreateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, validation.FormatValidationErrors(err))
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)

	if violations := validation.ValidateLessonContent(req.Title, req.Description); len(violations) > 0 {
		return response.ValidationFailed(c, violations)
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to verify course")
	}

	lesson := model.Lesson{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		PreviewURL:  req.PreviewURL,
		VideoURL:    req.VideoURL,
		OwnerID:     &user.ID,
	}

	if err := h.db.Create(&lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to create lesson")
	}

	h.enqueueCourseNotification(lesson.CourseID)

	return response.Created(c, lesson)
}

// UpdateLesson handles PATCH /api/v1/lessons/:id
func (h *LessonHandler) UpdateLesson(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to fetch lesson")
	}

	if allowed, err := authz.CanMaterial(user, authz.ActionUpdate, lesson.OwnerID); err != nil || !allowed {
		return response.Forbidden(c, "You are not allowed to modify this lesson")
	}

	var req UpdateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, validation.FormatValidationErrors(err))
	}

	updates := map[string]interface{}{}
	title := lesson.Title
	description := lesson.Description

	if req.Title != nil {
		title = validation.SanitizeString(*req.Title)
		updates["title"] = title
	}
	if req.Description != nil {
		description = validation.SanitizeString(*req.Description)
		updates["description"] = description
	}
	if req.PreviewURL != nil {
		updates["preview_url"] = *req.PreviewURL
	}
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
	}

	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if violations := validation.ValidateLessonContent(title, description); len(violations) > 0 {
		return response.ValidationFailed(c, violations)
	}

	if err := h.db.Model(&lesson).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update lesson")
	}

	h.enqueueCourseNotification(lesson.CourseID)

	return response.Success(c, lesson)
}

// DeleteLesson handles DELETE /api/v1/lessons/:id
func (h *LessonHandler) DeleteLesson(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to fetch lesson")
	}

	if allowed, err := authz.CanMaterial(user, authz.ActionDelete, lesson.OwnerID); err != nil || !allowed {
		return response.Forbidden(c, "Only the owner can delete this lesson")
	}

	if err := h.db.Delete(&lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete lesson")
	}

	return response.NoContent(c)
}

// enqueueCourseNotification schedules a course update notification when
// the lesson set of a course changes.
func (h *LessonHandler) enqueueCourseNotification(courseID uint) {
	if h.jobQueue == nil {
		return
	}

	payload := queue.CourseUpdateJobPayload{
		CourseID:  courseID,
		UpdatedAt: time.Now(),
	}
	if _, err := h.jobQueue.EnqueueJob(queue.JobTypeCourseUpdateNotification, payload.ToMap()); err != nil {
		log.Printf("failed to enqueue course update notification for course %d: %v", courseID, err)
	}
}
