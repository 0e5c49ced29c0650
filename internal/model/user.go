package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User maps to users.
type User struct {
	UserID       string     `gorm:"type:varchar(36);primaryKey"        json:"user_id"`
	Username     string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"username"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"         json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	BaseModel
}

// TableName sets the table name.
func (User) TableName() string { return "users" }

// BeforeCreate assigns an id when the caller did not.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	return nil
}
