// services/teams.go - shared team queries
package services

import (
	"errors"

	"emberfest/models"
	"emberfest/selection"

	"gorm.io/gorm"
)

var ErrTeamNotFound = errors.New("team not found")

// TeamSnapshot loads a team with its slots in index order. This is the
// authoritative projection shape: every change event and status read carries
// exactly this, so viewers can replace local state wholesale.
func TeamSnapshot(db *gorm.DB, teamID uint) (*models.Team, error) {
	var team models.Team
	err := db.Preload("Slots", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("slot_index ASC")
	}).First(&team, teamID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// CurrentTeamForUser returns the owner's most recently created team, the one
// the registration and selection flows always target. Returns ErrTeamNotFound
// when the account has no team yet.
func CurrentTeamForUser(db *gorm.DB, ownerID uint) (*models.Team, error) {
	var team models.Team
	err := db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Preload("Slots", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("slot_index ASC")
		}).
		First(&team).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// machineSlots converts stored slots into the state machine's shape.
func machineSlots(slots []models.PlayerSlot) []selection.Slot {
	out := make([]selection.Slot, 0, len(slots))
	for _, s := range slots {
		key := ""
		if s.CharacterKey != nil {
			key = *s.CharacterKey
		}
		out = append(out, selection.Slot{
			Index:        s.SlotIndex,
			Name:         s.Name,
			CharacterKey: key,
			Level:        s.Level,
		})
	}
	return out
}
