package services

import (
	"errors"
	"testing"
	"time"

	"emberfest/models"
)

func TestRegisterCreatesTeamWithThreeSlots(t *testing.T) {
	db := newTestDB(t)
	broker := NewBroker()
	owner := newTestUser(t, db, "captain@example.com")

	_, events := broker.Subscribe("teams", 0)

	svc := NewRegistrationService(db, broker)
	team, err := svc.Register(owner.ID, "Ember Guard", [3]string{"Aria", "Boro", "Cato"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if team.Name != "Ember Guard" {
		t.Errorf("name = %q, want Ember Guard", team.Name)
	}
	if team.Status != models.TeamStatusRegistering {
		t.Errorf("status = %q, want %q", team.Status, models.TeamStatusRegistering)
	}
	if len(team.Slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(team.Slots))
	}

	wantNames := []string{"Aria", "Boro", "Cato"}
	for i, slot := range team.Slots {
		if slot.SlotIndex != i {
			t.Errorf("slot %d has index %d", i, slot.SlotIndex)
		}
		if slot.Name != wantNames[i] {
			t.Errorf("slot %d name = %q, want %q", i, slot.Name, wantNames[i])
		}
		if slot.CharacterKey != nil {
			t.Errorf("slot %d already has character %q", i, *slot.CharacterKey)
		}
		if slot.Level != 1 {
			t.Errorf("slot %d level = %d, want 1", i, slot.Level)
		}
	}

	select {
	case ev := <-events:
		if ev.Type != EventInsert || ev.RowID != team.ID {
			t.Errorf("got event %s for row %d, want INSERT for %d", ev.Type, ev.RowID, team.ID)
		}
	default:
		t.Error("no insert event published")
	}
}

func TestRegisterValidatesNames(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegistrationService(db, NewBroker())
	owner := newTestUser(t, db, "captain@example.com")

	cases := []struct {
		name    string
		team    string
		players [3]string
		wantErr error
	}{
		{"empty team name", "", [3]string{"A", "B", "C"}, ErrTeamNameRequired},
		{"whitespace team name", "   ", [3]string{"A", "B", "C"}, ErrTeamNameRequired},
		{"empty first player", "Ember Guard", [3]string{"", "B", "C"}, ErrPlayerNameRequired},
		{"whitespace last player", "Ember Guard", [3]string{"A", "B", "  "}, ErrPlayerNameRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(owner.ID, tc.team, tc.players)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}

	// None of the rejected attempts may leave a partial team behind.
	var count int64
	db.Model(&models.Team{}).Count(&count)
	if count != 0 {
		t.Fatalf("%d teams exist after failed registrations, want 0", count)
	}
}

func TestRegisterTrimsWhitespace(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegistrationService(db, NewBroker())
	owner := newTestUser(t, db, "captain@example.com")

	team, err := svc.Register(owner.ID, "  Ember Guard  ", [3]string{" Aria ", "Boro", "Cato "})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if team.Name != "Ember Guard" {
		t.Errorf("name = %q, want trimmed", team.Name)
	}
	if team.Slots[0].Name != "Aria" || team.Slots[2].Name != "Cato" {
		t.Errorf("player names not trimmed: %q, %q", team.Slots[0].Name, team.Slots[2].Name)
	}
}

func TestCurrentTeamForUserPicksNewest(t *testing.T) {
	db := newTestDB(t)
	broker := NewBroker()
	owner := newTestUser(t, db, "captain@example.com")

	svc := NewRegistrationService(db, broker)
	first, err := svc.Register(owner.ID, "Old Guard", [3]string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("register first: %v", err)
	}
	// Force distinct creation times; SQLite timestamps can otherwise tie.
	db.Model(&models.Team{}).Where("id = ?", first.ID).
		Update("created_at", first.CreatedAt.Add(-time.Second))

	second, err := svc.Register(owner.ID, "Ember Guard", [3]string{"Aria", "Boro", "Cato"})
	if err != nil {
		t.Fatalf("register second: %v", err)
	}

	current, err := CurrentTeamForUser(db, owner.ID)
	if err != nil {
		t.Fatalf("current team: %v", err)
	}
	if current.ID != second.ID {
		t.Errorf("current team = %d (%s), want %d (Ember Guard)", current.ID, current.Name, second.ID)
	}
	if len(current.Slots) != 3 {
		t.Errorf("current team loaded %d slots, want 3", len(current.Slots))
	}
}

func TestCurrentTeamForUserNoTeam(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "captain@example.com")

	_, err := CurrentTeamForUser(db, owner.ID)
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("got %v, want ErrTeamNotFound", err)
	}
}
