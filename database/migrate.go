// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"emberfest/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	if err := Migrate(GetDB()); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}
	log.Println("✅ All migrations completed successfully")
}

// Migrate applies the schema to the given connection. Split out from
// RunMigrations so tests can run it against their own database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.PlayerSlot{},
	); err != nil {
		return err
	}

	return createIndexes(db)
}

func createIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_player_slots_team_slot ON player_slots(team_id, slot_index)",
		// Enforcement point for per-team character uniqueness. Partial so the
		// three initial NULL slots of a fresh team don't collide.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_player_slots_team_character ON player_slots(team_id, character_key) WHERE character_key IS NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_teams_owner_created ON teams(owner_id, created_at DESC)",
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
