// models/team.go
package models

import "time"

type TeamStatus string

const (
	TeamStatusRegistering TeamStatus = "REGISTERING"
	TeamStatusSelecting   TeamStatus = "SELECTING"
	TeamStatusCompleted   TeamStatus = "COMPLETED"
)

// Team progresses REGISTERING -> SELECTING -> COMPLETED and never backward.
type Team struct {
	ID      uint       `json:"id" gorm:"primaryKey"`
	Name    string     `json:"name" gorm:"not null;size:100"`
	OwnerID uint       `json:"owner_id" gorm:"not null;index"`
	Owner   *User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Status  TeamStatus `json:"status" gorm:"not null;default:'REGISTERING';index"`

	// Always exactly 3 slots, indices 0..2.
	Slots []PlayerSlot `json:"slots,omitempty" gorm:"foreignKey:TeamID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Team) TableName() string {
	return "teams"
}
