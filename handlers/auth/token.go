package auth

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/utils/auth"
	"github.com/alexsergeyev/skillforge/utils/middleware"
	"github.com/alexsergeyev/skillforge/utils/response"
)

// RefreshRequest carries the refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse carries the newly issued access token
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Refresh exchanges a refresh token for a fresh access token
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		if err == auth.ErrExpiredToken {
			return response.Unauthorized(c, "Refresh token has expired")
		}
		return response.Unauthorized(c, "Invalid refresh token")
	}

	if claims.TokenType != auth.TokenTypeRefresh {
		return response.Unauthorized(c, "Invalid token type")
	}

	isRevoked, err := h.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.Unauthorized(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load user")
	}

	if !user.IsActive {
		return response.Unauthorized(c, "Account is deactivated")
	}
	if user.TokenVersion != claims.TokenVersion {
		return response.Unauthorized(c, "Token has been invalidated")
	}

	accessToken, _, err := h.jwtManager.RefreshAccessToken(req.RefreshToken, user.TokenVersion)
	if err != nil {
		return response.Unauthorized(c, "Failed to refresh token")
	}

	return response.Success(c, RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(h.jwtManager.AccessTokenTTL().Seconds()),
	})
}

// LogoutRequest optionally carries the refresh token to revoke alongside
// the access token from the Authorization header.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the current access token and, when provided, the
// refresh token. Revocation lasts until the tokens would have expired
// on their own.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	jti, ok := middleware.GetTokenJTI(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	claims, _ := c.Locals("claims").(*auth.Claims)
	if claims == nil || claims.ExpiresAt == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	if err := h.blacklistService.RevokeToken(c.Context(), jti, userID, claims.ExpiresAt.Time, "logout"); err != nil {
		return response.InternalServerError(c, "Failed to revoke token")
	}

	var req LogoutRequest
	if err := c.BodyParser(&req); err == nil && req.RefreshToken != "" {
		if refreshClaims, err := h.jwtManager.ValidateToken(req.RefreshToken); err == nil &&
			refreshClaims.TokenType == auth.TokenTypeRefresh &&
			refreshClaims.UserID == userID &&
			refreshClaims.ExpiresAt != nil {
			if err := h.blacklistService.RevokeToken(c.Context(), refreshClaims.ID, userID, refreshClaims.ExpiresAt.Time, "logout"); err != nil {
				return response.InternalServerError(c, "Failed to revoke refresh token")
			}
		}
	}

	return response.SuccessWithMessage(c, "Logged out successfully", nil)
}
