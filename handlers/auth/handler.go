package auth

import (
	"time"

	"gorm.io/gorm"

	"github.com/alexsergeyev/skillforge/utils/auth"
	"github.com/alexsergeyev/skillforge/utils/middleware"
	"github.com/alexsergeyev/skillforge/utils/validation"
)

// AuthHandler handles registration, login and token lifecycle requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *auth.JWTManager
	blacklistService     *auth.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *auth.JWTManager, bruteForce *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     auth.NewBlacklistService(db),
		bruteForceProtection: bruteForce,
		validator:            validation.NewValidator(),
	}
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone,omitempty"`
	City      string     `json:"city,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
