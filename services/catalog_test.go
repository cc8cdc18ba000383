package services

import (
	"strings"
	"testing"
	"time"
)

const rosterHeader = "id,name,class,hp,mana,speed,strengthUtility,skills,spriteUrl,shortDescription,primaryStatBuff\n"

func TestParseRosterValidRows(t *testing.T) {
	csv := rosterHeader +
		"knight,Knight,Knight,125,40,20,Defensive Tank,Shield Bash|20 Mana stun,assets/knight.png,Tanky.,+5 Defense\n" +
		"bard,Bard,Bard,110,60,22,Support,Healing Melody|heal 25%,assets/bard.png,Sings.,+10 Support\n"

	chars, err := ParseRoster(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(chars) != 2 {
		t.Fatalf("got %d characters, want 2", len(chars))
	}

	knight := chars[0]
	if knight.ID != "knight" || knight.Class != "Knight" {
		t.Fatalf("bad first row: %#v", knight)
	}
	if knight.HP != 125 || knight.Mana != 40 || knight.Speed != 20 {
		t.Fatalf("bad stats: %#v", knight)
	}
	if len(knight.Skills) != 1 || knight.Skills[0].Name != "Shield Bash" {
		t.Fatalf("bad skills: %#v", knight.Skills)
	}
	if knight.Skills[0].Description != "20 Mana stun" {
		t.Fatalf("bad skill description: %q", knight.Skills[0].Description)
	}
}

func TestParseRosterDropsMalformedRows(t *testing.T) {
	cases := []struct {
		name string
		row  string
	}{
		{"missing id", ",NoID,Knight,1,1,1,,,,,"},
		{"missing name", "x,,Knight,1,1,1,,,,,"},
		{"unknown class", "x,Name,Paladin,1,1,1,,,,,"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			csv := rosterHeader +
				tc.row + "\n" +
				"wizard,Wizard,Wizard,110,70,22,AoE,Fireball|boom,,Casts.,+8 Magic\n"

			chars, err := ParseRoster(strings.NewReader(csv))
			if err != nil {
				t.Fatalf("fetch must succeed with the valid subset, got err: %v", err)
			}
			if len(chars) != 1 || chars[0].ID != "wizard" {
				t.Fatalf("want only wizard, got %#v", chars)
			}
		})
	}
}

func TestParseRosterMultipleSkills(t *testing.T) {
	csv := rosterHeader +
		"archer,Archer,Archer,105,50,26,DPS,Rapid Fire|two hits,Pinning Arrow|slow,,Shoots.,+10 Speed\n"

	chars, err := ParseRoster(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// The skills field is quoted in real exports; unquoted commas push the
	// remaining columns over, but the row still parses.
	if len(chars) != 1 {
		t.Fatalf("got %d characters, want 1", len(chars))
	}

	quoted := rosterHeader +
		`archer,Archer,Archer,105,50,26,DPS,"Rapid Fire|two hits,Pinning Arrow|slow",,Shoots.,+10 Speed` + "\n"

	chars, err = ParseRoster(strings.NewReader(quoted))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(chars[0].Skills) != 2 {
		t.Fatalf("got %d skills, want 2: %#v", len(chars[0].Skills), chars[0].Skills)
	}
	if chars[0].Skills[1].Name != "Pinning Arrow" {
		t.Fatalf("bad second skill: %#v", chars[0].Skills[1])
	}
}

func TestBuiltinCatalogIsComplete(t *testing.T) {
	c := NewCatalog("")
	chars := c.Characters()

	if len(chars) != 5 {
		t.Fatalf("builtin roster has %d characters, want 5", len(chars))
	}

	seen := make(map[string]bool)
	for _, ch := range chars {
		if seen[ch.ID] {
			t.Fatalf("duplicate character id %q", ch.ID)
		}
		seen[ch.ID] = true

		if len(ch.Skills) < 2 || len(ch.Skills) > 3 {
			t.Fatalf("%s has %d skills, want 2-3", ch.ID, len(ch.Skills))
		}
	}

	for _, key := range []string{"knight", "archer", "wizard", "assassin", "bard"} {
		if !seen[key] {
			t.Fatalf("missing character %q", key)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	c := NewCatalog("")

	if _, ok := c.Lookup("knight"); !ok {
		t.Fatalf("knight should exist")
	}
	if _, ok := c.Lookup("paladin"); ok {
		t.Fatalf("paladin should not exist")
	}
}

func TestCatalogCacheExpiry(t *testing.T) {
	// No HTTP here; just drive the cache bookkeeping with a fake clock.
	now := time.Now()
	c := NewCatalog("http://example.invalid/roster.csv")
	c.now = func() time.Time { return now }

	c.mu.Lock()
	c.cached = builtinCharacters
	c.fetchedAt = now
	c.mu.Unlock()

	if got := c.Characters(); len(got) != 5 {
		t.Fatalf("fresh cache not served, got %d characters", len(got))
	}

	// Advance past the TTL; the refetch against the invalid host fails and
	// the last good roster must still be served.
	now = now.Add(catalogCacheTTL + time.Minute)
	if got := c.Characters(); len(got) != 5 {
		t.Fatalf("stale fallback not served, got %d characters", len(got))
	}
}
