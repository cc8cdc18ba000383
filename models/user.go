// models/user.go
package models

import (
	"time"
)

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Password    string `gorm:"not null" json:"-"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `gorm:"default:false" json:"is_admin"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`

	// Relationships
	Teams []Team `gorm:"foreignKey:OwnerID" json:"teams,omitempty"`
}
