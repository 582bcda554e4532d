package subscription

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/utils/middleware"
	"github.com/alexsergeyev/skillforge/utils/response"
)

// SubscriptionHandler handles course subscription requests
type SubscriptionHandler struct {
	db *gorm.DB
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(db *gorm.DB) *SubscriptionHandler {
	return &SubscriptionHandler{db: db}
}

// ToggleRequest names the course being toggled
type ToggleRequest struct {
	CourseID uint `json:"course_id" validate:"required,min=1"`
}

// Toggle handles POST /api/v1/subscriptions. A user who is subscribed
// gets unsubscribed and vice versa.
func (h *SubscriptionHandler) Toggle(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req ToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CourseID == 0 {
		return response.BadRequest(c, "course_id is required")
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to verify course")
	}

	var existing model.Subscription
	err := h.db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&existing).Error
	if err == nil {
		if err := h.db.Delete(&existing).Error; err != nil {
			return response.InternalServerError(c, "Failed to remove subscription")
		}
		return response.SuccessWithMessage(c, "Subscription removed", fiber.Map{"subscribed": false})
	}
	if err != gorm.ErrRecordNotFound {
		return response.InternalServerError(c, "Failed to check subscription")
	}

	subscription := model.Subscription{
		UserID:   user.ID,
		CourseID: course.ID,
	}
	if err := h.db.Create(&subscription).Error; err != nil {
		// Two simultaneous toggles race on the unique index; the loser
		// reports a conflict instead of flipping the state twice.
		if err == gorm.ErrDuplicatedKey {
			return response.Conflict(c, "Subscription already exists")
		}
		return response.InternalServerError(c, "Failed to create subscription")
	}

	return response.SuccessWithMessage(c, "Subscription added", fiber.Map{"subscribed": true})
}

// ListMine handles GET /api/v1/subscriptions
func (h *SubscriptionHandler) ListMine(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var subscriptions []model.Subscription
	if err := h.db.Preload("Course").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&subscriptions).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch subscriptions")
	}

	return response.Success(c, subscriptions)
}
