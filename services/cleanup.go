// services/cleanup.go - background cleanup tasks
package services

import (
	"log"
	"time"

	"emberfest/models"

	"gorm.io/gorm"
)

// CleanupService periodically removes registration debris: teams stuck in
// REGISTERING that have no player slots. The registration transaction makes
// those impossible to create here, but rows written by older clients against
// the same database have been seen without slots.
type CleanupService struct {
	db       *gorm.DB
	broker   *Broker
	interval time.Duration
	maxAge   time.Duration
	stop     chan struct{}
}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service.
func InitCleanupService(db *gorm.DB, broker *Broker) {
	cleanupService = &CleanupService{
		db:       db,
		broker:   broker,
		interval: time.Hour,
		maxAge:   time.Hour,
		stop:     make(chan struct{}),
	}
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Start launches the background worker.
func (s *CleanupService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupEmptyTeams(); err != nil {
					log.Printf("cleanup: %v", err)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop shuts the worker down.
func (s *CleanupService) Stop() {
	close(s.stop)
}

// CleanupEmptyTeams deletes REGISTERING teams older than maxAge with zero
// slots and publishes DELETE events so admin viewers drop the rows.
func (s *CleanupService) CleanupEmptyTeams() error {
	cutoff := time.Now().Add(-s.maxAge)

	var empty []models.Team
	err := s.db.
		Where("status = ? AND created_at < ? AND id NOT IN (SELECT DISTINCT team_id FROM player_slots)",
			models.TeamStatusRegistering, cutoff).
		Find(&empty).Error
	if err != nil {
		return err
	}

	if len(empty) == 0 {
		return nil
	}

	if err := s.db.Delete(&empty).Error; err != nil {
		return err
	}

	for _, team := range empty {
		s.broker.Publish(ChangeEvent{
			Table: "teams",
			Type:  EventDelete,
			RowID: team.ID,
			Old:   team,
		})
	}

	log.Printf("✅ Cleaned up %d empty registering teams", len(empty))
	return nil
}
