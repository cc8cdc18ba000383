// services/selection_service.go - database-backed character selection
package services

import (
	"errors"

	"emberfest/models"
	"emberfest/selection"

	"gorm.io/gorm"
)

var (
	ErrNotTeamOwner     = errors.New("team is not owned by this account")
	ErrUnknownCharacter = errors.New("unknown character")
)

type SelectionService struct {
	db      *gorm.DB
	broker  *Broker
	catalog *Catalog
}

func NewSelectionService(db *gorm.DB, broker *Broker, catalog *Catalog) *SelectionService {
	return &SelectionService{db: db, broker: broker, catalog: catalog}
}

// State recomputes the machine position from the stored slots, so a reload
// resumes at the first unassigned slot rather than restarting.
func (s *SelectionService) State(team *models.Team) selection.State {
	return selection.Resume(machineSlots(team.Slots))
}

// Assign commits the current slot's character pick for the owner's team and
// advances the team status. The in-database guards are the source of truth:
// the conditional UPDATE loses if another client filled the slot first, and
// the partial unique index rejects a character already held by a teammate.
// On any error nothing is written, so the caller retries from the same state.
func (s *SelectionService) Assign(teamID, ownerID uint, characterKey string, level int) (*models.Team, error) {
	team, err := TeamSnapshot(s.db, teamID)
	if err != nil {
		return nil, err
	}
	if team.OwnerID != ownerID {
		return nil, ErrNotTeamOwner
	}

	if _, ok := s.catalog.Lookup(characterKey); !ok {
		return nil, ErrUnknownCharacter
	}
	if level <= 0 {
		level = 1
	}

	// Client-style precheck. Cheap rejection only; two clients can both pass
	// this and race, which is what the transaction below is for.
	state := s.State(team)
	if state.Done() {
		return nil, selection.ErrAlreadyCompleted
	}
	if !selection.CanAssign(state, characterKey) {
		return nil, selection.ErrCharacterTaken
	}
	current, _ := state.Current()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PlayerSlot{}).
			Where("team_id = ? AND slot_index = ? AND character_key IS NULL", teamID, current.Index).
			Updates(map[string]interface{}{
				"character_key": characterKey,
				"level":         level,
			})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return selection.ErrCharacterTaken
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another client committed this slot between our read and write.
			return selection.ErrSlotFilled
		}

		// First committed pick moves the team out of REGISTERING. The status
		// guard keeps the transition forward-only.
		if err := tx.Model(&models.Team{}).
			Where("id = ? AND status = ?", teamID, models.TeamStatusRegistering).
			Update("status", models.TeamStatusSelecting).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.PlayerSlot{}).
			Where("team_id = ? AND character_key IS NULL", teamID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Model(&models.Team{}).
				Where("id = ? AND status <> ?", teamID, models.TeamStatusCompleted).
				Update("status", models.TeamStatusCompleted).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	snapshot, err := TeamSnapshot(s.db, teamID)
	if err != nil {
		return nil, err
	}

	s.broker.Publish(ChangeEvent{
		Table: "teams",
		Type:  EventUpdate,
		RowID: snapshot.ID,
		New:   snapshot,
		Old:   team,
	})

	return snapshot, nil
}
