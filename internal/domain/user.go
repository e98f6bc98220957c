package domain

import (
	"time"

	"github.com/google/uuid" // UUID generation for primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// UserRole determines a user's access level
type UserRole string

// Recognized user roles
const (
	RoleAdmin    UserRole = "admin"
	RoleViewer   UserRole = "viewer"
	RoleOperator UserRole = "operator"
)

// User Model
type User struct {
	ID          string    `gorm:"primaryKey;type:char(36)" json:"id"`    // Primary key (UUID)
	Name        string    `gorm:"size:100;unique;not null" json:"name"`  // Unique user name
	Password    string    `gorm:"not null" json:"-"`                     // Hashed password, never serialized
	Role        UserRole  `gorm:"size:20;default:viewer" json:"role"`    // Role: admin, viewer or operator
	Permissions []string  `gorm:"serializer:json" json:"permissions"`    // Advisory capability strings, not enforced
	Balance     float64   `gorm:"not null;default:0" json:"balance"`     // Cached sum of the user's transactions
	CreatedAt   time.Time `json:"createdAt"`                             // Timestamp of creation
}

// BeforeCreate assigns a UUID primary key when none is set
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
