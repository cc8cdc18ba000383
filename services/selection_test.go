package services

import (
	"errors"
	"testing"

	"emberfest/models"
	"emberfest/selection"

	"gorm.io/gorm"
)

func newSelectionFixture(t *testing.T) (*gorm.DB, *Broker, *SelectionService, *models.Team, *models.User) {
	t.Helper()

	db := newTestDB(t)
	broker := NewBroker()
	owner := newTestUser(t, db, "captain@example.com")
	team := registerTestTeam(t, db, broker, owner.ID)
	svc := NewSelectionService(db, broker, NewCatalog(""))
	return db, broker, svc, team, owner
}

func TestAssignWalksTeamToCompleted(t *testing.T) {
	_, _, svc, team, owner := newSelectionFixture(t)

	picks := []struct {
		key        string
		level      int
		wantStatus models.TeamStatus
	}{
		{"knight", 3, models.TeamStatusSelecting},
		{"archer", 1, models.TeamStatusSelecting},
		{"wizard", 5, models.TeamStatusCompleted},
	}

	for i, pick := range picks {
		snapshot, err := svc.Assign(team.ID, owner.ID, pick.key, pick.level)
		if err != nil {
			t.Fatalf("assign %d (%s): %v", i, pick.key, err)
		}
		if snapshot.Status != pick.wantStatus {
			t.Fatalf("after pick %d status = %q, want %q", i, snapshot.Status, pick.wantStatus)
		}

		slot := snapshot.Slots[i]
		if slot.CharacterKey == nil || *slot.CharacterKey != pick.key {
			t.Fatalf("slot %d character = %v, want %q", i, slot.CharacterKey, pick.key)
		}
		if slot.Level != pick.level {
			t.Fatalf("slot %d level = %d, want %d", i, slot.Level, pick.level)
		}
	}
}

func TestAssignRejectsDuplicateCharacter(t *testing.T) {
	_, _, svc, team, owner := newSelectionFixture(t)

	if _, err := svc.Assign(team.ID, owner.ID, "knight", 1); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	_, err := svc.Assign(team.ID, owner.ID, "knight", 1)
	if !errors.Is(err, selection.ErrCharacterTaken) {
		t.Fatalf("got %v, want ErrCharacterTaken", err)
	}

	// The rejected attempt must leave the team exactly where it was.
	snapshot, err := TeamSnapshot(svc.db, team.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.Status != models.TeamStatusSelecting {
		t.Errorf("status = %q, want %q", snapshot.Status, models.TeamStatusSelecting)
	}
	if snapshot.Slots[1].CharacterKey != nil {
		t.Errorf("slot 1 was written: %q", *snapshot.Slots[1].CharacterKey)
	}
}

func TestSelectionResumesAtFirstUnassignedSlot(t *testing.T) {
	_, _, svc, team, owner := newSelectionFixture(t)

	if _, err := svc.Assign(team.ID, owner.ID, "bard", 2); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// A fresh load, as after a page reload, must resume at slot 1.
	reloaded, err := TeamSnapshot(svc.db, team.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	state := svc.State(reloaded)
	current, ok := state.Current()
	if !ok {
		t.Fatalf("no current slot after one pick")
	}
	if current.Index != 1 {
		t.Errorf("resumed at slot %d, want 1", current.Index)
	}
	if state.Done() {
		t.Error("state done after one of three picks")
	}
}

func TestAssignRejectsUnknownCharacterAndForeignTeam(t *testing.T) {
	db, _, svc, team, owner := newSelectionFixture(t)

	if _, err := svc.Assign(team.ID, owner.ID, "paladin", 1); !errors.Is(err, ErrUnknownCharacter) {
		t.Fatalf("unknown character: got %v", err)
	}

	stranger := newTestUser(t, db, "stranger@example.com")
	if _, err := svc.Assign(team.ID, stranger.ID, "knight", 1); !errors.Is(err, ErrNotTeamOwner) {
		t.Fatalf("foreign owner: got %v", err)
	}

	if _, err := svc.Assign(team.ID+99, owner.ID, "knight", 1); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("missing team: got %v", err)
	}
}

func TestAssignAfterCompletedIsRejected(t *testing.T) {
	_, _, svc, team, owner := newSelectionFixture(t)

	for _, key := range []string{"knight", "archer", "wizard"} {
		if _, err := svc.Assign(team.ID, owner.ID, key, 1); err != nil {
			t.Fatalf("assign %s: %v", key, err)
		}
	}

	_, err := svc.Assign(team.ID, owner.ID, "bard", 1)
	if !errors.Is(err, selection.ErrAlreadyCompleted) {
		t.Fatalf("got %v, want ErrAlreadyCompleted", err)
	}

	snapshot, _ := TeamSnapshot(svc.db, team.ID)
	if snapshot.Status != models.TeamStatusCompleted {
		t.Errorf("status regressed to %q", snapshot.Status)
	}
}

func TestStatusNeverRegresses(t *testing.T) {
	db, _, svc, team, owner := newSelectionFixture(t)

	for _, key := range []string{"knight", "archer", "wizard"} {
		if _, err := svc.Assign(team.ID, owner.ID, key, 1); err != nil {
			t.Fatalf("assign %s: %v", key, err)
		}
	}

	// The guarded transition a stale writer would attempt must be a no-op.
	res := db.Model(&models.Team{}).
		Where("id = ? AND status = ?", team.ID, models.TeamStatusRegistering).
		Update("status", models.TeamStatusSelecting)
	if res.Error != nil {
		t.Fatalf("guarded update: %v", res.Error)
	}
	if res.RowsAffected != 0 {
		t.Fatalf("guarded update wrote %d rows on a completed team", res.RowsAffected)
	}

	snapshot, _ := TeamSnapshot(db, team.ID)
	if snapshot.Status != models.TeamStatusCompleted {
		t.Errorf("status = %q, want %q", snapshot.Status, models.TeamStatusCompleted)
	}
}

// Two clients on the same team both see "wizard" as available and commit at
// the same time. The first write wins; the second hits the per-team character
// index and maps to the same error the precheck produces, so the client
// re-renders from the next change event instead of showing a partial write.
func TestConcurrentAssignSameCharacter(t *testing.T) {
	db, broker, svc, team, owner := newSelectionFixture(t)

	_, events := broker.Subscribe("teams", team.ID)

	// Client A commits wizard on slot 0 through the normal path.
	if _, err := svc.Assign(team.ID, owner.ID, "wizard", 1); err != nil {
		t.Fatalf("client A assign: %v", err)
	}

	// Client B raced past the availability check and writes wizard on slot 1
	// directly. The partial unique index must reject it.
	res := db.Model(&models.PlayerSlot{}).
		Where("team_id = ? AND slot_index = ? AND character_key IS NULL", team.ID, 1).
		Update("character_key", "wizard")
	if res.Error == nil {
		t.Fatalf("second wizard write succeeded, RowsAffected=%d", res.RowsAffected)
	}
	if !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		t.Fatalf("got %v, want gorm.ErrDuplicatedKey", res.Error)
	}

	// Client B's rewrite of the same race through the service maps the
	// conflict to the selection error.
	if _, err := svc.Assign(team.ID, owner.ID, "wizard", 1); !errors.Is(err, selection.ErrCharacterTaken) {
		t.Fatalf("service retry: got %v, want ErrCharacterTaken", err)
	}

	// The loser recovers by observing the winner's change event.
	select {
	case ev := <-events:
		if ev.Type != EventUpdate {
			t.Fatalf("got %s event, want UPDATE", ev.Type)
		}
		winner, ok := ev.New.(*models.Team)
		if !ok {
			t.Fatalf("event payload is %T, want *models.Team", ev.New)
		}
		if winner.Slots[0].CharacterKey == nil || *winner.Slots[0].CharacterKey != "wizard" {
			t.Fatalf("event snapshot does not show the winning pick: %#v", winner.Slots[0])
		}
	default:
		t.Fatal("no change event published for the winning write")
	}

	// Losing writes never advance the cursor or the status.
	snapshot, _ := TeamSnapshot(db, team.ID)
	if snapshot.Slots[1].CharacterKey != nil {
		t.Errorf("slot 1 written by losing client: %q", *snapshot.Slots[1].CharacterKey)
	}
	if snapshot.Status != models.TeamStatusSelecting {
		t.Errorf("status = %q, want %q", snapshot.Status, models.TeamStatusSelecting)
	}
}

func TestConditionalWriteSkipsFilledSlot(t *testing.T) {
	db, _, svc, team, owner := newSelectionFixture(t)

	if _, err := svc.Assign(team.ID, owner.ID, "knight", 1); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// A stale client targeting the already-filled slot 0 must write nothing;
	// the IS NULL guard is what turns the race into a clean retry.
	res := db.Model(&models.PlayerSlot{}).
		Where("team_id = ? AND slot_index = ? AND character_key IS NULL", team.ID, 0).
		Update("character_key", "archer")
	if res.Error != nil {
		t.Fatalf("conditional write: %v", res.Error)
	}
	if res.RowsAffected != 0 {
		t.Fatalf("stale write affected %d rows, want 0", res.RowsAffected)
	}

	snapshot, _ := TeamSnapshot(db, team.ID)
	if *snapshot.Slots[0].CharacterKey != "knight" {
		t.Errorf("slot 0 overwritten: %q", *snapshot.Slots[0].CharacterKey)
	}
}

func TestAssignNormalizesLevel(t *testing.T) {
	_, _, svc, team, owner := newSelectionFixture(t)

	snapshot, err := svc.Assign(team.ID, owner.ID, "assassin", 0)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if snapshot.Slots[0].Level != 1 {
		t.Errorf("level = %d, want 1", snapshot.Slots[0].Level)
	}
}
