package model

import (
	"time"
)

// JWTTokenBlacklist stores revoked token JTIs until their natural expiry.
type JWTTokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"type:varchar(100);not null;index" json:"token"` // JTI
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Reason    string    `gorm:"type:varchar(100)" json:"reason"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for JWTTokenBlacklist
func (JWTTokenBlacklist) TableName() string {
	return "jwt_token_blacklist"
}
