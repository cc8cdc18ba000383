// models/player.go
package models

import "time"

// PlayerSlot is one of a team's three player positions. CharacterKey is nil
// until the slot's pick is committed; the partial unique index on
// (team_id, character_key) is what makes per-team uniqueness hold under
// concurrent writers (see database/migrate.go).
type PlayerSlot struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	TeamID       uint    `json:"team_id" gorm:"not null;index"`
	Team         *Team   `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	SlotIndex    int     `json:"slot_index" gorm:"not null"`
	Name         string  `json:"name" gorm:"not null;size:100"`
	CharacterKey *string `json:"character_key" gorm:"size:32"`
	Level        int     `json:"level" gorm:"default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PlayerSlot) TableName() string {
	return "player_slots"
}
