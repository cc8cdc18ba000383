package services

import (
	"fmt"
	"testing"
	"time"

	"emberfest/database"
	"emberfest/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the real schema,
// including the partial unique index the selection path depends on.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// Keep the shared in-memory database alive for the test's duration.
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func newTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Password: "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func registerTestTeam(t *testing.T, db *gorm.DB, broker *Broker, ownerID uint) *models.Team {
	t.Helper()

	svc := NewRegistrationService(db, broker)
	team, err := svc.Register(ownerID, "Ember Guard", [3]string{"Aria", "Boro", "Cato"})
	if err != nil {
		t.Fatalf("register test team: %v", err)
	}
	return team
}
