package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// Token types carried in the claims.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	Expiry        time.Duration // access token lifetime
	RefreshExpiry time.Duration // refresh token lifetime
	Issuer        string
}

// Claims represents JWT claims
type Claims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenType    string `json:"token_type"`
	TokenVersion int    `json:"token_version"` // For invalidating all tokens
	jwt.RegisteredClaims
}

// JWTManager handles JWT token operations
type JWTManager struct {
	config JWTConfig
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{config: config}
}

func (j *JWTManager) generate(userID uint, email, tokenType string, tokenVersion int, lifetime time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.New().String()

	claims := Claims{
		UserID:       userID,
		Email:        email,
		TokenType:    tokenType,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.config.Issuer,
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.config.Secret))
	return signed, jti, err
}

// GenerateAccessToken generates a new access token and its JTI.
func (j *JWTManager) GenerateAccessToken(userID uint, email string, tokenVersion int) (string, string, error) {
	return j.generate(userID, email, TokenTypeAccess, tokenVersion, j.config.Expiry)
}

// GenerateRefreshToken generates a new refresh token and its JTI.
func (j *JWTManager) GenerateRefreshToken(userID uint, email string, tokenVersion int) (string, string, error) {
	return j.generate(userID, email, TokenTypeRefresh, tokenVersion, j.config.RefreshExpiry)
}

// AccessTokenTTL returns the configured access token lifetime.
func (j *JWTManager) AccessTokenTTL() time.Duration {
	return j.config.Expiry
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(j.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access token.
func (j *JWTManager) RefreshAccessToken(refreshToken string, tokenVersion int) (string, string, error) {
	claims, err := j.ValidateToken(refreshToken)
	if err != nil {
		return "", "", err
	}

	if claims.TokenType != TokenTypeRefresh {
		return "", "", ErrInvalidToken
	}

	return j.GenerateAccessToken(claims.UserID, claims.Email, tokenVersion)
}

// TokenExpiry returns the expiry time of a token without validating it.
// Used when blacklisting a token that is being logged out.
func (j *JWTManager) TokenExpiry(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return time.Time{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalidClaims
	}

	return claims.ExpiresAt.Time, nil
}
