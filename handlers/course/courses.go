package course

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
	defaultPageSize = 5
	maxPageSize     = 50
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	jobQueue  *queue.Queue
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, jobQueue *queue.Queue) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
		jobQueue:  jobQueue,
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=5,max=200,title_chars"`
	Description string `json:"description" validate:"required,min=20,max=2000"`
	PreviewURL  string `json:"preview_url" validate:"omitempty,url,max=500"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=5,max=200,title_chars"`
	Description *string `json:"description" validate:"omitempty,min=20,max=2000"`
	PreviewURL  *string `json:"preview_url" validate:"omitempty,url,max=500"`
}

// CourseResponse is a course together with its lesson count
type CourseResponse struct {
	model.Course
	LessonsCount int64 `json:"lessons_count"`
}

func (h *CourseHandler) courseResponse(course *model.Course) CourseResponse {
	var count int64
	h.db.Model(&model.Lesson{}).Where("course_id = ?", course.ID).Count(&count)
	return CourseResponse{Course: *course, LessonsCount: count}
}

// titleTaken reports whether another course already uses the title,
// compared case-insensitively.
func (h *CourseHandler) titleTaken(title string, excludeID uint) (bool, error) {
	var count int64
	query := h.db.Model(&model.Course{}).Where("LOWER(title) = LOWER(?)", title)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageSize)))
	search := c.Query("search", "")

	query := h.db.Model(&model.Course{})

	// Moderators and staff review the whole catalog, everyone else
	// manages their own courses.
	if !authz.SeesAllRows(user) {
		query = query.Where("owner_id = ?", user.ID)
	}

	if search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	pagination := response.CalculatePagination(page, limit, maxPageSize, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var courses []model.Course
	if err := query.
		Order("created_at DESC").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	results := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		results = append(results, h.courseResponse(&courses[i]))
	}

	return response.Paginated(c, results, pagination)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.Preload("Lessons").First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, h.courseResponse(&course))
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	if allowed, err := authz.CanMaterial(user, authz.ActionCreate, nil); err != nil || !allowed {
		return response.Forbidden(c, "Moderators cannot create courses")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, validation.FormatValidationErrors(err))
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)

	if req.Title == req.Description {
		return response.ValidationFailed(c, map[string]string{
			"description": "Description must not duplicate the title",
		})
	}

	taken, err := h.titleTaken(req.Title, 0)
	if err != nil {
		return response.InternalServerError(c, "Failed to check course title")
	}
	if taken {
		return response.Conflict(c, "A course with this title already exists")
	}

	course := model.Course{
		Title:       req.Title,
		Description: req.Description,
		PreviewURL:  req.PreviewURL,
		OwnerID:     &user.ID,
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, h.courseResponse(&course))
}

// UpdateCourse handles PATCH /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var course model.Course
	if err := h.db.First(&course, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if allowed, err := authz.CanMaterial(user, authz.ActionUpdate, course.OwnerID); err != nil || !allowed {
		return response.Forbidden(c, "You are not allowed to modify this course")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, validation.FormatValidationErrors(err))
	}

	updates := map[string]interface{}{}
	title := course.Title
	description := course.Description

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

	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if title == description {
		return response.ValidationFailed(c, map[string]string{
			"description": "Description must not duplicate the title",
		})
	}

	if req.Title != nil {
		taken, err := h.titleTaken(title, course.ID)
		if err != nil {
			return response.InternalServerError(c, "Failed to check course title")
		}
		if taken {
			return response.Conflict(c, "A course with this title already exists")
		}
	}

	if err := h.db.Model(&course).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	h.enqueueUpdateNotification(course.ID)

	return response.Success(c, h.courseResponse(&course))
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var course model.Course
	if err := h.db.First(&course, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if allowed, err := authz.CanMaterial(user, authz.ActionDelete, course.OwnerID); err != nil || !allowed {
		return response.Forbidden(c, "Only the owner can delete this course")
	}

	// Lessons and subscriptions go with the course via FK cascade.
	if err := h.db.Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.NoContent(c)
}

// enqueueUpdateNotification schedules the subscriber notification job.
// Failure to enqueue is logged inside the queue and never fails the
// update itself.
func (h *CourseHandler) enqueueUpdateNotification(courseID uint) {
	if h.jobQueue == nil {
		return
	}

	payload := queue.CourseUpdateJobPayload{
		CourseID:  courseID,
		UpdatedAt: time.Now(),
	}
	if _, err := h.jobQueue.EnqueueJob(queue.JobTypeCourseUpdateNotification, payload.ToMap()); err != nil {
		// The update already succeeded; subscribers just miss one email.
		log.Printf("failed to enqueue course update notification for course %d: %v", courseID, err)
	}
}
