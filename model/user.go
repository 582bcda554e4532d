package model

import (
	"strings"
	"time"
)

// ModeratorGroupName is the designated group granting elevated
// read/update rights on course material.
const ModeratorGroupName = "moderators"

// User represents a registered account. Email is the login key.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"` // Never expose password in JSON
	FirstName    string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string     `gorm:"type:varchar(100)" json:"last_name"`
	Phone        string     `gorm:"type:varchar(35)" json:"phone,omitempty"`
	City         string     `gorm:"type:varchar(50)" json:"city,omitempty"`
	AvatarURL    string     `gorm:"type:varchar(500)" json:"avatar_url,omitempty"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	IsStaff      bool       `gorm:"default:false" json:"-"`
	IsSuperuser  bool       `gorm:"default:false" json:"-"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	TokenVersion int        `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	Groups        []Group        `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"groups,omitempty"`
	Courses       []Course       `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	Lessons       []Lesson       `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	Subscriptions []Subscription `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Payments      []Payment      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Group is a named permission group. Membership in the "moderators"
// group is what the authorization layer keys off.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"type:varchar(80);uniqueIndex;not null" json:"name"`

	Users []User `gorm:"many2many:user_groups" json:"-"`
}

// FullName returns "First Last", falling back to the email.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// InGroup reports membership in a named group. Groups must be preloaded.
func (u *User) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}

// IsModerator reports membership in the moderators group.
func (u *User) IsModerator() bool {
	return u.InGroup(ModeratorGroupName)
}
