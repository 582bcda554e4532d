package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/alexsergeyev/skillforge/model"
	"github.com/alexsergeyev/skillforge/utils/auth"
	"github.com/alexsergeyev/skillforge/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	ip := c.IP()

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Record failed attempt even if user not found
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	// Blocked accounts fail with the same status as bad credentials but
	// an explicit message, matching what the middleware reports later.
	if !user.IsActive {
		return response.Unauthorized(c, "Account is deactivated")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	// Last login feeds the inactivity sweep.
	now := time.Now()
	if err := h.db.Model(&user).Update("last_login", now).Error; err != nil {
		return response.InternalServerError(c, "Failed to record login")
	}
	user.LastLogin = &now

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	res := LoginResponse{
		User:         userResponse(&user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.jwtManager.AccessTokenTTL().Seconds()),
	}

	return response.Success(c, res)
}
