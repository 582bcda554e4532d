package auth

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/utils/auth"
	"github.com/alexsergeyev/skillforge/utils/response"
	"github.com/alexsergeyev/skillforge/utils/validation"
)

// RegisterRequest represents a new account request
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"omitempty,max=100"`
	LastName        string `json:"last_name" validate:"omitempty,max=100"`
	Phone           string `json:"phone" validate:"omitempty,max=35"`
	City            string `json:"city" validate:"omitempty,max=50"`
}

func userResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		City:      user.City,
		AvatarURL: user.AvatarURL,
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Register handles new account creation
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, validation.FormatValidationErrors(err))
	}

	req.FirstName = validation.SanitizeString(req.FirstName)
	req.LastName = validation.SanitizeString(req.LastName)
	req.City = validation.SanitizeString(req.City)

	var existing model.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "An account with this email already exists")
	} else if err != gorm.ErrRecordNotFound {
		return response.InternalServerError(c, "Failed to check existing accounts")
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		City:         req.City,
		IsActive:     true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return response.Conflict(c, "An account with this email already exists")
		}
		return response.InternalServerError(c, "Failed to create account")
	}

	return response.Created(c, userResponse(&user))
}
