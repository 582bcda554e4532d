package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alexsergeyev/skillforge/utils/auth"
	"github.com/alexsergeyev/skillforge/utils/middleware"
	"github.com/alexsergeyev/skillforge/utils/response"
	"github.com/alexsergeyev/skillforge/utils/validation"
)

// Profile returns the authenticated user's account
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	return response.Success(c, userResponse(user))
}

// ChangePasswordRequest carries a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=NewPassword"`
}

// ChangePassword updates the password and invalidates all existing
// tokens for the account.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, validation.FormatValidationErrors(err))
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	if err := h.db.Model(user).Update("password_hash", passwordHash).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	// Bumping the token version logs out every session at once.
	if err := h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID); err != nil {
		return response.InternalServerError(c, "Failed to invalidate sessions")
	}

	return response.SuccessWithMessage(c, "Password changed successfully", nil)
}
