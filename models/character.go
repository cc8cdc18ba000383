// models/character.go
package models

// Character is a catalog entry, not a database row. Skill text is static
// flavor data and is never simulated.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LevelStats struct {
	Level int `json:"level"`
	HP    int `json:"hp"`
	Atk   int `json:"atk"`
	Speed int `json:"speed"`
	Mana  int `json:"mana"`
}

type Character struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Class            string       `json:"class"`
	HP               int          `json:"hp"`
	Atk              int          `json:"atk"`
	Mana             int          `json:"mana"`
	Speed            int          `json:"speed"`
	StrengthUtility  string       `json:"strength_utility"`
	Skills           []Skill      `json:"skills"`
	SpriteURL        string       `json:"sprite_url,omitempty"`
	ShortDescription string       `json:"short_description"`
	PrimaryStatBuff  string       `json:"primary_stat_buff"`
	LevelStats       []LevelStats `json:"level_stats,omitempty"`
}

// CharacterClasses are the only classes the catalog accepts; feed rows with
// anything else are dropped.
var CharacterClasses = []string{"Knight", "Archer", "Wizard", "Assassin", "Bard"}

func ValidCharacterClass(class string) bool {
	for _, c := range CharacterClasses {
		if c == class {
			return true
		}
	}
	return false
}
