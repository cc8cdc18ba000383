// services/registration.go - team registration flow
package services

import (
	"errors"
	"strings"
	"time"

	"emberfest/models"
	"emberfest/selection"

	"gorm.io/gorm"
)

var (
	ErrTeamNameRequired   = errors.New("team name is required")
	ErrPlayerNameRequired = errors.New("all three player names are required")
)

type RegistrationService struct {
	db     *gorm.DB
	broker *Broker
}

func NewRegistrationService(db *gorm.DB, broker *Broker) *RegistrationService {
	return &RegistrationService{db: db, broker: broker}
}

// Register creates one team plus its three player slots in a single
// transaction. Either everything exists afterward or nothing does; a team
// without players is never observable.
func (s *RegistrationService) Register(ownerID uint, teamName string, playerNames [selection.SlotCount]string) (*models.Team, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, ErrTeamNameRequired
	}
	for i := range playerNames {
		playerNames[i] = strings.TrimSpace(playerNames[i])
		if playerNames[i] == "" {
			return nil, ErrPlayerNameRequired
		}
	}

	team := &models.Team{
		Name:      teamName,
		OwnerID:   ownerID,
		Status:    models.TeamStatusRegistering,
		CreatedAt: time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}

		for i, name := range playerNames {
			slot := &models.PlayerSlot{
				TeamID:    team.ID,
				SlotIndex: i,
				Name:      name,
				Level:     1,
			}
			if err := tx.Create(slot).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	snapshot, err := TeamSnapshot(s.db, team.ID)
	if err != nil {
		return nil, err
	}

	s.broker.Publish(ChangeEvent{
		Table: "teams",
		Type:  EventInsert,
		RowID: snapshot.ID,
		New:   snapshot,
	})

	return snapshot, nil
}
