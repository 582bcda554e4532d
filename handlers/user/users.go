package user

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/services/mediastore"
	"github.com/alexsergeyev/skillforge/utils/middleware"
	"github.com/alexsergeyev/skillforge/utils/response"
	"github.com/alexsergeyev/skillforge/utils/validation"
)

// UserHandler handles user profile requests
type UserHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	spaces    *mediastore.SpacesClient
}

// NewUserHandler creates a new user handler. The spaces client may be
// nil when object storage is not configured; avatar cleanup is then
// skipped.
func NewUserHandler(db *gorm.DB, spaces *mediastore.SpacesClient) *UserHandler {
	return &UserHandler{
		db:        db,
		validator: validation.NewValidator(),
		spaces:    spaces,
	}
}

// PublicProfile is what other users see of an account
type PublicProfile struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	City      string `json:"city,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// OwnProfile is the full view a user gets of their own account
type OwnProfile struct {
	model.User
	Payments []model.Payment `json:"payments"`
}

// UpdateUserRequest represents an account update
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=35"`
	City      *string `json:"city" validate:"omitempty,max=50"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

// GetUser handles GET /api/v1/users/:id. The owner (and staff) get the
// full profile with payment history, everyone else a trimmed public view.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	viewer, ok := middleware.GetUser(c)
	if !ok || viewer == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var target model.User
	if err := h.db.First(&target, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	isSelf := viewer.ID == target.ID
	if !isSelf && !viewer.IsStaff && !viewer.IsSuperuser {
		return response.Success(c, PublicProfile{
			ID:        target.ID,
			Email:     target.Email,
			FirstName: target.FirstName,
			City:      target.City,
			AvatarURL: target.AvatarURL,
		})
	}

	var payments []model.Payment
	if err := h.db.Where("user_id = ?", target.ID).
		Order("payment_date DESC").
		Find(&payments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch payment history")
	}

	return response.Success(c, OwnProfile{User: target, Payments: payments})
}

// UpdateUser handles PATCH /api/v1/users/:id. Users edit themselves;
// staff can edit anyone.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	viewer, ok := middleware.GetUser(c)
	if !ok || viewer == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var target model.User
	if err := h.db.First(&target, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	if viewer.ID != target.ID && !viewer.IsStaff && !viewer.IsSuperuser {
		return response.Forbidden(c, "You can only edit your own profile")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, validation.FormatValidationErrors(err))
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = validation.SanitizeString(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = validation.SanitizeString(*req.LastName)
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.City != nil {
		updates["city"] = validation.SanitizeString(*req.City)
	}
	replacedAvatar := ""
	if req.AvatarURL != nil {
		if *req.AvatarURL != target.AvatarURL {
			replacedAvatar = target.AvatarURL
		}
		updates["avatar_url"] = *req.AvatarURL
	}

	if len(updates) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := h.db.Model(&target).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}

	h.cleanupReplacedAvatar(c, replacedAvatar)

	return response.Success(c, target)
}

// cleanupReplacedAvatar removes the previous avatar object from storage
// once a new URL is saved. Only objects in our own bucket are touched;
// externally hosted avatars are left alone. Failures are logged, the
// profile update already succeeded.
func (h *UserHandler) cleanupReplacedAvatar(c *fiber.Ctx, oldURL string) {
	if h.spaces == nil || oldURL == "" {
		return
	}

	key, ok := h.spaces.ObjectKey(oldURL)
	if !ok {
		return
	}

	if err := h.spaces.DeleteFile(c.Context(), key); err != nil {
		log.Printf("failed to delete replaced avatar %q: %v", key, err)
	}
}
